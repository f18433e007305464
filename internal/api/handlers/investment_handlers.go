package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/accrual"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/investing"
)

// InvestmentHandlers exposes subscription and investment reads
type InvestmentHandlers struct {
	investingService *investing.Service
	accrualService   *accrual.Service
	statsWindowDays  int
}

// NewInvestmentHandlers creates investment handlers
func NewInvestmentHandlers(
	investingService *investing.Service,
	accrualService *accrual.Service,
	statsWindowDays int,
) *InvestmentHandlers {
	return &InvestmentHandlers{
		investingService: investingService,
		accrualService:   accrualService,
		statsWindowDays:  statsWindowDays,
	}
}

// Subscribe commits funds into a plan
// POST /api/v1/investments
func (h *InvestmentHandlers) Subscribe(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	var req entities.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	investment, err := h.investingService.Subscribe(c.Request.Context(), userID, &req)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, investment)
}

// ListInvestments returns the user's positions
// GET /api/v1/investments
func (h *InvestmentHandlers) ListInvestments(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	list, err := h.investingService.ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investments": list})
}

// GetStats returns the dashboard aggregate: active count, invested total,
// current profit, ROI and the daily profit series
// GET /api/v1/investments/stats
func (h *InvestmentHandlers) GetStats(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	stats, err := h.accrualService.Stats(c.Request.Context(), userID, h.statsWindowDays, time.Now().UTC())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
