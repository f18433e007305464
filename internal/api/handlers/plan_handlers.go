package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/plans"
)

// PlanHandlers exposes the plan catalog
type PlanHandlers struct {
	plansService *plans.Service
}

// NewPlanHandlers creates plan handlers
func NewPlanHandlers(plansService *plans.Service) *PlanHandlers {
	return &PlanHandlers{plansService: plansService}
}

// ListPlans returns the full catalog
// GET /api/v1/plans
func (h *PlanHandlers) ListPlans(c *gin.Context) {
	list, err := h.plansService.List(c.Request.Context())
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": list})
}

// GetPlan returns one plan
// GET /api/v1/plans/:id
func (h *PlanHandlers) GetPlan(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid plan ID")
		return
	}

	plan, err := h.plansService.Get(c.Request.Context(), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}
