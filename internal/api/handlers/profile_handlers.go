package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/profiles"
)

// ProfileHandlers exposes the cached per-user aggregate
type ProfileHandlers struct {
	profilesService *profiles.Service
}

// NewProfileHandlers creates profile handlers
func NewProfileHandlers(profilesService *profiles.Service) *ProfileHandlers {
	return &ProfileHandlers{profilesService: profilesService}
}

// GetProfile returns the authenticated user's profile
// GET /api/v1/profile
func (h *ProfileHandlers) GetProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	profile, err := h.profilesService.Get(c.Request.Context(), userID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
