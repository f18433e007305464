package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/cache"
	"github.com/emires65/simpleprofit-dao-trader/internal/infrastructure/database"
)

// HealthHandlers exposes liveness and readiness probes
type HealthHandlers struct {
	db    *sqlx.DB
	redis cache.RedisClient
}

// NewHealthHandlers creates health handlers
func NewHealthHandlers(db *sqlx.DB, redis cache.RedisClient) *HealthHandlers {
	return &HealthHandlers{db: db, redis: redis}
}

// Health reports process liveness
// GET /health
func (h *HealthHandlers) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports dependency readiness. Redis degrades rather than fails:
// the service stays correct without events, only realtime suffers.
// GET /ready
func (h *HealthHandlers) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	if err := database.HealthCheck(h.db); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unavailable",
			"database": err.Error(),
		})
		return
	}

	status := gin.H{"status": "ok", "database": "ok", "redis": "ok"}
	if err := h.redis.Ping(ctx); err != nil {
		status["redis"] = "degraded"
	}

	c.JSON(http.StatusOK, status)
}
