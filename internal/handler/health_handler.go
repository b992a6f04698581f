package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BrokerHealth reports whether the message broker connection is usable.
type BrokerHealth interface {
	IsHealthy() bool
}

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	pool   *pgxpool.Pool
	broker BrokerHealth
}

// NewHealthHandler creates a new HealthHandler. Both dependencies are
// optional; a nil pool or broker is skipped during readiness checks.
func NewHealthHandler(pool *pgxpool.Pool, broker BrokerHealth) *HealthHandler {
	return &HealthHandler{pool: pool, broker: broker}
}

// Liveness handles GET /healthz.
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now(),
	})
}

// Readiness handles GET /readyz. Not ready until the database answers
// and the broker connection, when one is configured, is open.
func (h *HealthHandler) Readiness(c *gin.Context) {
	if h.pool != nil {
		if err := h.pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "unavailable",
				"reason": "database unreachable",
			})
			return
		}
	}

	if h.broker != nil && !h.broker.IsHealthy() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unavailable",
			"reason": "message broker unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now(),
	})
}
