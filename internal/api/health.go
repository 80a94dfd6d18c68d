package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/themobileprof/momvitals-be/internal/circuitbreaker"
)

// Pinger checks a backing service
type Pinger interface {
	PingContext(ctx context.Context) error
}

// BreakerReporter exposes the insight circuit state
type BreakerReporter interface {
	Enabled() bool
	BreakerState() circuitbreaker.State
}

// HealthHandler reports service health
type HealthHandler struct {
	database Pinger
	insight  BreakerReporter
	now      func() time.Time
}

// NewHealthHandler creates a new health handler. Either dependency may be nil.
func NewHealthHandler(database Pinger, insight BreakerReporter) *HealthHandler {
	return &HealthHandler{database: database, insight: insight, now: time.Now}
}

// Health returns 200 when the database answers and 503 otherwise
func (h *HealthHandler) Health(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{
		"status": "healthy",
		"time":   h.now().Unix(),
	}

	if h.database != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.database.PingContext(ctx); err != nil {
			status = http.StatusServiceUnavailable
			body["status"] = "degraded"
			body["database"] = "unreachable"
		} else {
			body["database"] = "ok"
		}
	}

	if h.insight != nil {
		body["insight"] = gin.H{
			"enabled": h.insight.Enabled(),
			"breaker": h.insight.BreakerState().String(),
		}
	}

	c.JSON(status, body)
}
