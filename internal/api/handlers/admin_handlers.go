package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/repositories"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/adminauth"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/notifications"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/plans"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/profiles"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/reconciliation"
)

// AdminHandlers exposes the back-office surface: transaction review,
// user financials, plan management, broadcasts, settings and the audit log
type AdminHandlers struct {
	authService           *adminauth.Service
	reconciliationService *reconciliation.Service
	profilesService       *profiles.Service
	plansService          *plans.Service
	notificationsService  *notifications.Service
	adminLogRepo          repositories.AdminLogRepository
}

// NewAdminHandlers creates admin handlers
func NewAdminHandlers(
	authService *adminauth.Service,
	reconciliationService *reconciliation.Service,
	profilesService *profiles.Service,
	plansService *plans.Service,
	notificationsService *notifications.Service,
	adminLogRepo repositories.AdminLogRepository,
) *AdminHandlers {
	return &AdminHandlers{
		authService:           authService,
		reconciliationService: reconciliationService,
		profilesService:       profilesService,
		plansService:          plansService,
		notificationsService:  notificationsService,
		adminLogRepo:          adminLogRepo,
	}
}

// loginRequest carries admin credentials
type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login authenticates an admin and issues a token
// POST /api/v1/admin/login
func (h *AdminHandlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ListAllTransactions returns the full ledger for review
// GET /api/v1/admin/transactions
func (h *AdminHandlers) ListAllTransactions(c *gin.Context) {
	limit, offset := parsePagination(c)

	var (
		list []*entities.Transaction
		err  error
	)
	if c.Query("status") == "pending" {
		list, err = h.reconciliationService.ListPending(c.Request.Context(), limit, offset)
	} else {
		list, err = h.reconciliationService.List(c.Request.Context(), limit, offset)
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": list})
}

// ApproveTransaction settles a pending transaction
// POST /api/v1/admin/transactions/:id/approve
func (h *AdminHandlers) ApproveTransaction(c *gin.Context) {
	adminID, err := getAdminID(c)
	if err != nil {
		respondUnauthorized(c, "admin authentication required")
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid transaction ID")
		return
	}

	tx, err := h.reconciliationService.Approve(c.Request.Context(), adminID, txID, c.ClientIP())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// RejectTransaction fails a pending transaction
// POST /api/v1/admin/transactions/:id/reject
func (h *AdminHandlers) RejectTransaction(c *gin.Context) {
	adminID, err := getAdminID(c)
	if err != nil {
		respondUnauthorized(c, "admin authentication required")
		return
	}

	txID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid transaction ID")
		return
	}

	tx, err := h.reconciliationService.Reject(c.Request.Context(), adminID, txID, c.ClientIP())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, tx)
}

// ListUsers returns profiles for the user management view
// GET /api/v1/admin/users
func (h *AdminHandlers) ListUsers(c *gin.Context) {
	limit, offset := parsePagination(c)
	list, err := h.profilesService.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": list})
}

// AdjustUserFinancials overwrites cached profile fields
// PUT /api/v1/admin/users/:id/financials
func (h *AdminHandlers) AdjustUserFinancials(c *gin.Context) {
	adminID, err := getAdminID(c)
	if err != nil {
		respondUnauthorized(c, "admin authentication required")
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid user ID")
		return
	}

	var req entities.AdjustFinancialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	profile, err := h.profilesService.AdjustFinancials(c.Request.Context(), adminID, userID, &req, c.ClientIP())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RebuildUserBalance recomputes a balance from the ledger
// POST /api/v1/admin/users/:id/rebuild-balance
func (h *AdminHandlers) RebuildUserBalance(c *gin.Context) {
	if _, err := getAdminID(c); err != nil {
		respondUnauthorized(c, "admin authentication required")
		return
	}

	userID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid user ID")
		return
	}

	balance, err := h.reconciliationService.RebuildBalance(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"balance": balance})
}

// CreatePlan adds a plan to the catalog
// POST /api/v1/admin/plans
func (h *AdminHandlers) CreatePlan(c *gin.Context) {
	adminID, err := getAdminID(c)
	if err != nil {
		respondUnauthorized(c, "admin authentication required")
		return
	}

	var req entities.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	plan, err := h.plansService.Create(c.Request.Context(), adminID, &req, c.ClientIP())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// UpdatePlan rewrites a plan's fields
// PUT /api/v1/admin/plans/:id
func (h *AdminHandlers) UpdatePlan(c *gin.Context) {
	adminID, err := getAdminID(c)
	if err != nil {
		respondUnauthorized(c, "admin authentication required")
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid plan ID")
		return
	}

	var req entities.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	plan, err := h.plansService.Update(c.Request.Context(), adminID, planID, &req, c.ClientIP())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// DeletePlan removes an unreferenced plan
// DELETE /api/v1/admin/plans/:id
func (h *AdminHandlers) DeletePlan(c *gin.Context) {
	adminID, err := getAdminID(c)
	if err != nil {
		respondUnauthorized(c, "admin authentication required")
		return
	}

	planID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid plan ID")
		return
	}

	if err := h.plansService.Delete(c.Request.Context(), adminID, planID, c.ClientIP()); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// Broadcast sends a notification to every user
// POST /api/v1/admin/notifications/broadcast
func (h *AdminHandlers) Broadcast(c *gin.Context) {
	adminID, err := getAdminID(c)
	if err != nil {
		respondUnauthorized(c, "admin authentication required")
		return
	}

	var req entities.BroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	recipients, err := h.notificationsService.Broadcast(c.Request.Context(), adminID, &req, c.ClientIP())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"recipients": recipients})
}

// UpdateDepositWallets rewrites the deposit address document
// PUT /api/v1/admin/settings/deposit-wallets
func (h *AdminHandlers) UpdateDepositWallets(c *gin.Context) {
	adminID, err := getAdminID(c)
	if err != nil {
		respondUnauthorized(c, "admin authentication required")
		return
	}

	var value map[string]interface{}
	if err := c.ShouldBindJSON(&value); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	setting, err := h.notificationsService.UpdateDepositWallets(c.Request.Context(), adminID, value, c.ClientIP())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, setting)
}

// ListAdminLogs returns the audit trail, newest first
// GET /api/v1/admin/logs
func (h *AdminHandlers) ListAdminLogs(c *gin.Context) {
	limit, offset := parsePagination(c)
	logs, err := h.adminLogRepo.List(c.Request.Context(), limit, offset)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"logs": logs})
}
