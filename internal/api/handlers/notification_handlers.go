package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
	"github.com/emires65/simpleprofit-dao-trader/internal/domain/services/notifications"
)

// NotificationHandlers exposes in-app notifications and public settings
type NotificationHandlers struct {
	notificationsService *notifications.Service
}

// NewNotificationHandlers creates notification handlers
func NewNotificationHandlers(notificationsService *notifications.Service) *NotificationHandlers {
	return &NotificationHandlers{notificationsService: notificationsService}
}

// ListNotifications returns the user's notifications, newest first
// GET /api/v1/notifications
func (h *NotificationHandlers) ListNotifications(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	limit, offset := parsePagination(c)
	list, err := h.notificationsService.ListByUser(c.Request.Context(), userID, limit, offset)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": list})
}

// MarkNotificationRead acknowledges one notification
// POST /api/v1/notifications/:id/read
func (h *NotificationHandlers) MarkNotificationRead(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondUnauthorized(c, "authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondBadRequest(c, "invalid notification ID")
		return
	}

	if err := h.notificationsService.MarkRead(c.Request.Context(), id, userID); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// GetDepositWallets returns the configured deposit addresses. Users need
// these to fund deposits, so the endpoint sits behind user auth, not
// admin auth.
// GET /api/v1/settings/deposit-wallets
func (h *NotificationHandlers) GetDepositWallets(c *gin.Context) {
	setting, err := h.notificationsService.GetDepositWallets(c.Request.Context())
	if err != nil {
		if domainerrors.IsNotFound(err) {
			c.JSON(http.StatusOK, gin.H{"wallets": gin.H{}})
			return
		}
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"wallets": setting.Value})
}
