package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/themobileprof/momvitals-be/internal/risk"
	"github.com/themobileprof/momvitals-be/internal/vitals"
)

// AssessHandler serves the stateless assessment endpoint
type AssessHandler struct {
	assessor *Assessor
}

// NewAssessHandler creates a new assess handler
func NewAssessHandler(assessor *Assessor) *AssessHandler {
	return &AssessHandler{assessor: assessor}
}

// Assess classifies the posted snapshot with the rule engine only. The route
// is public, so there is no model call and no audit entry; the caller passes
// any prior score or narrative explicitly.
func (h *AssessHandler) Assess(c *gin.Context) {
	var req risk.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Vitals = vitals.WithDerivedBMI(req.Vitals)

	c.JSON(http.StatusOK, h.assessor.Preview(req))
}
