package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/internal/api/middleware"
	"github.com/themobileprof/momvitals-be/internal/profile"
	"github.com/themobileprof/momvitals-be/internal/risk"
	"github.com/themobileprof/momvitals-be/internal/routine"
)

// RoutineHandler serves the routine catalog
type RoutineHandler struct {
	catalog  *routine.Catalog
	engine   *risk.Engine
	profiles profile.Cache
	logger   *zap.Logger
}

// NewRoutineHandler creates a new routine handler. profiles may be nil, in
// which case nothing is flagged as recommended.
func NewRoutineHandler(catalog *routine.Catalog, engine *risk.Engine, profiles profile.Cache, logger *zap.Logger) *RoutineHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RoutineHandler{
		catalog:  catalog,
		engine:   engine,
		profiles: profiles,
		logger:   logger,
	}
}

// List returns every routine, flagging those matching the user's last snapshot
func (h *RoutineHandler) List(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var current *risk.Assessment
	if h.profiles != nil {
		p, ok, err := h.profiles.Get(c.Request.Context(), userID)
		if err != nil {
			h.logger.Warn("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		} else if ok {
			a := h.engine.Assess(p.Vitals)
			current = &a
		}
	}

	c.JSON(http.StatusOK, gin.H{"routines": h.catalog.List(current)})
}

// Get returns one routine with its items. Premium routines are gated by
// PremiumGate in front of this handler.
func (h *RoutineHandler) Get(c *gin.Context) {
	r, ok := h.catalog.Get(c.Param("slug"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Routine not found"})
		return
	}
	c.JSON(http.StatusOK, r)
}

// PremiumGate requires the premium feature only for premium slugs
func (h *RoutineHandler) PremiumGate(checker middleware.FeatureChecker) gin.HandlerFunc {
	return middleware.RequireFeatureWhen(checker, routine.PremiumFeature, func(c *gin.Context) bool {
		r, ok := h.catalog.Get(c.Param("slug"))
		return ok && r.Premium
	})
}
