package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/internal/api/middleware"
	"github.com/themobileprof/momvitals-be/internal/audit"
)

// AuditHandler exposes the caller's recent assessments
type AuditHandler struct {
	store  audit.Store
	logger *zap.Logger
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(store audit.Store, logger *zap.Logger) *AuditHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditHandler{store: store, logger: logger}
}

// Latest returns the newest audit records for the current user
func (h *AuditHandler) Latest(c *gin.Context) {
	userID := middleware.GetUserID(c)

	limit, err := parseLimit(c.Query("limit"), 10, 50)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entries, err := h.store.Latest(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("audit lookup failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve audit trail"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}
