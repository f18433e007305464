package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/emires65/simpleprofit-dao-trader/internal/domain/entities"
	domainerrors "github.com/emires65/simpleprofit-dao-trader/internal/domain/errors"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

// getUserID extracts and validates user ID from context
func getUserID(c *gin.Context) (uuid.UUID, error) {
	userIDVal, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, fmt.Errorf("user ID not found in context")
	}

	switch v := userIDVal.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	default:
		return uuid.Nil, fmt.Errorf("invalid user ID type in context")
	}
}

// getAdminID extracts the authenticated admin ID from context
func getAdminID(c *gin.Context) (uuid.UUID, error) {
	adminIDVal, exists := c.Get("admin_id")
	if !exists {
		return uuid.Nil, fmt.Errorf("admin ID not found in context")
	}

	switch v := adminIDVal.(type) {
	case uuid.UUID:
		return v, nil
	case string:
		return uuid.Parse(v)
	default:
		return uuid.Nil, fmt.Errorf("invalid admin ID type in context")
	}
}

// parsePagination reads limit/offset query params with sane bounds
func parsePagination(c *gin.Context) (limit, offset int) {
	limit = defaultPageSize
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	return limit, offset
}

// respondError sends a standardized error response
func respondError(c *gin.Context, status int, code, message string, details map[string]interface{}) {
	c.JSON(status, entities.ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
	})
}

// respondBadRequest sends a bad request error
func respondBadRequest(c *gin.Context, message string, details ...map[string]interface{}) {
	var det map[string]interface{}
	if len(details) > 0 {
		det = details[0]
	}
	respondError(c, http.StatusBadRequest, "INVALID_REQUEST", message, det)
}

// respondUnauthorized sends an unauthorized error
func respondUnauthorized(c *gin.Context, message string) {
	respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

// respondInternalError sends an internal server error
func respondInternalError(c *gin.Context, message string) {
	respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", message, nil)
}

// respondDomainError maps a domain error category onto an HTTP status.
// Anything uncategorized surfaces as a 500 without leaking the cause.
func respondDomainError(c *gin.Context, err error) {
	code := domainerrors.GetErrorCode(err)
	details := domainerrors.GetErrorDetails(err)

	switch {
	case domainerrors.IsNotFound(err):
		respondError(c, http.StatusNotFound, code, err.Error(), details)
	case domainerrors.IsInvalidInput(err):
		respondError(c, http.StatusBadRequest, code, err.Error(), details)
	case domainerrors.IsInsufficientFunds(err):
		respondError(c, http.StatusUnprocessableEntity, code, err.Error(), details)
	case domainerrors.IsInvalidState(err):
		respondError(c, http.StatusConflict, code, err.Error(), details)
	case domainerrors.IsUnauthorized(err):
		respondError(c, http.StatusUnauthorized, code, err.Error(), details)
	case domainerrors.IsForbidden(err):
		respondError(c, http.StatusForbidden, code, err.Error(), details)
	default:
		respondInternalError(c, "internal error")
	}
}
