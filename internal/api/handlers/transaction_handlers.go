package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/reconciliation"
)

// TransactionHandlers exposes the user-facing transaction ledger
type TransactionHandlers struct {
	reconciliationService *reconciliation.Service
}

// NewTransactionHandlers creates transaction handlers
func NewTransactionHandlers(reconciliationService *reconciliation.Service) *TransactionHandlers {
	return &TransactionHandlers{reconciliationService: reconciliationService}
}

// SubmitRequest records a deposit or withdrawal request
// POST /api/v1/transactions
func (h *TransactionHandlers) SubmitRequest(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	var req entities.SubmitRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	tx, err := h.reconciliationService.SubmitRequest(c.Request.Context(), userID, &req)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tx)
}

// ListTransactions returns the user's transactions, newest first
// GET /api/v1/transactions
func (h *TransactionHandlers) ListTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	limit, offset := parsePagination(c)
	list, err := h.reconciliationService.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": list})
}
