package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/internal/api/middleware"
	"github.com/themobileprof/momvitals-be/internal/audit"
	"github.com/themobileprof/momvitals-be/internal/db"
	"github.com/themobileprof/momvitals-be/internal/export"
	"github.com/themobileprof/momvitals-be/internal/profile"
	"github.com/themobileprof/momvitals-be/internal/risk"
	"github.com/themobileprof/momvitals-be/internal/routine"
	"github.com/themobileprof/momvitals-be/internal/vitals"
)

const (
	defaultHistoryLimit = 30
	maxHistoryLimit     = 365
	exportLimit         = 1000
)

// VitalsHandler handles vitals logging and the dashboard reads
type VitalsHandler struct {
	store    VitalsStore
	profiles profile.Cache
	assessor *Assessor
	loc      *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

// NewVitalsHandler creates a new vitals handler. Calendar days for streaks and
// export timestamps are taken in loc.
func NewVitalsHandler(store VitalsStore, profiles profile.Cache, assessor *Assessor, loc *time.Location, logger *zap.Logger) *VitalsHandler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &VitalsHandler{
		store:    store,
		profiles: profiles,
		assessor: assessor,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
}

// VitalsLogResponse represents a stored vitals log
type VitalsLogResponse struct {
	ID          string      `json:"id"`
	Vitals      risk.Vitals `json:"vitals"`
	OverallRisk risk.Level  `json:"overall_risk"`
	HealthScore int         `json:"health_score"`
	Streak      int         `json:"streak"`
	CreatedAt   time.Time   `json:"created_at"`
}

// SubmitResponse is returned after a vitals form is logged
type SubmitResponse struct {
	Log VitalsLogResponse `json:"log"`
	Outcome
}

// AssessmentResponse is the dashboard view of the current snapshot
type AssessmentResponse struct {
	Assessment risk.Assessment   `json:"assessment"`
	Routines   []routine.Routine `json:"routines"`
	Vitals     risk.Vitals       `json:"vitals"`
	Streak     int               `json:"streak"`
	UpdatedAt  *time.Time        `json:"updated_at,omitempty"`
}

// Submit logs a vitals form, updates the streak and cached profile and
// returns the assessment with the model narrative when available
func (h *VitalsHandler) Submit(c *gin.Context) {
	userID := middleware.GetUserID(c)
	ctx := c.Request.Context()

	var in vitals.FormInput
	if err := c.ShouldBind(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	v := vitals.ParseForm(in)
	if !v.HasReadings() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enter at least one of sugar, blood pressure or BMI"})
		return
	}

	now := h.now().In(h.loc)
	p := h.currentProfile(c, userID)
	streak := vitals.NextStreak(p.LastLogAt, p.Streak, now)

	out := h.assessor.Assess(ctx, userID, audit.OriginVitals, risk.Request{Vitals: v, PriorScore: p.PriorScore()})

	entry := &db.VitalsLog{
		UserID:      userID,
		Vitals:      v,
		OverallRisk: out.Assessment.OverallRisk,
		HealthScore: out.Assessment.HealthScore,
		Streak:      streak,
	}
	if err := h.store.SaveVitalsLog(ctx, entry); err != nil {
		h.logger.Error("save vitals log failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save vitals"})
		return
	}

	if h.profiles != nil {
		p.Apply(v, out.Assessment, now)
		p.Streak = streak
		p.LastLogAt = now
		if err := h.profiles.Put(ctx, p); err != nil {
			h.logger.Warn("profile update failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	c.JSON(http.StatusCreated, SubmitResponse{Log: logToResponse(entry), Outcome: out})
}

// Latest returns the most recent vitals log
func (h *VitalsHandler) Latest(c *gin.Context) {
	userID := middleware.GetUserID(c)

	entry, err := h.store.LatestVitalsLog(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No vitals logged yet"})
			return
		}
		h.logger.Error("latest vitals lookup failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve vitals"})
		return
	}

	c.JSON(http.StatusOK, logToResponse(entry))
}

// History returns logs newest first
func (h *VitalsHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)

	limit, err := parseLimit(c.Query("limit"), defaultHistoryLimit, maxHistoryLimit)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	logs, err := h.store.VitalsHistory(c.Request.Context(), userID, limit)
	if err != nil {
		h.logger.Error("vitals history failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}

	response := make([]VitalsLogResponse, 0, len(logs))
	for i := range logs {
		response = append(response, logToResponse(&logs[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"logs":  response,
		"count": len(response),
	})
}

// Export downloads the history as a spreadsheet
func (h *VitalsHandler) Export(c *gin.Context) {
	userID := middleware.GetUserID(c)

	logs, err := h.store.VitalsHistory(c.Request.Context(), userID, exportLimit)
	if err != nil {
		h.logger.Error("vitals export lookup failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve history"})
		return
	}

	data, err := export.VitalsHistory(logs, h.loc)
	if err != nil {
		h.logger.Error("vitals export failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to build export"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(h.now().In(h.loc))+`"`)
	c.Data(http.StatusOK, export.ContentType, data)
}

// Assessment recomputes the dashboard from the latest snapshot without
// calling the model
func (h *VitalsHandler) Assessment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	p := h.currentProfile(c, userID)

	a := h.assessor.Engine().AssessRequest(risk.Request{Vitals: p.Vitals, PriorScore: p.PriorScore()})
	response := AssessmentResponse{
		Assessment: a,
		Routines:   h.assessor.Catalog().Recommend(a),
		Vitals:     p.Vitals,
		Streak:     p.Streak,
	}
	if !p.UpdatedAt.IsZero() {
		updated := p.UpdatedAt
		response.UpdatedAt = &updated
	}

	c.JSON(http.StatusOK, response)
}

// currentProfile reads the cached profile, rebuilding it from the latest
// stored log on a cache miss. Lookup failures yield an empty profile.
func (h *VitalsHandler) currentProfile(c *gin.Context, userID string) profile.Profile {
	ctx := c.Request.Context()
	if h.profiles != nil {
		p, ok, err := h.profiles.Get(ctx, userID)
		if err != nil {
			h.logger.Warn("profile lookup failed", zap.String("user_id", userID), zap.Error(err))
		} else if ok {
			return p
		}
	}

	p := profile.Profile{UserID: userID}
	latest, err := h.store.LatestVitalsLog(ctx, userID)
	if err != nil {
		if !errors.Is(err, db.ErrNotFound) {
			h.logger.Warn("latest vitals lookup failed", zap.String("user_id", userID), zap.Error(err))
		}
		return p
	}

	p.Vitals = latest.Vitals
	p.Streak = latest.Streak
	p.LastLogAt = latest.CreatedAt
	p.UpdatedAt = latest.CreatedAt
	if !latest.OverallRisk.AtLeast(risk.LevelHigh) {
		p.HealthScore = latest.HealthScore
	}
	return p
}

func logToResponse(l *db.VitalsLog) VitalsLogResponse {
	return VitalsLogResponse{
		ID:          l.ID,
		Vitals:      l.Vitals,
		OverallRisk: l.OverallRisk,
		HealthScore: l.HealthScore,
		Streak:      l.Streak,
		CreatedAt:   l.CreatedAt,
	}
}

// parseLimit reads an optional positive limit, capped at max
func parseLimit(raw string, def, max int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, errors.New("limit must be a positive integer")
	}
	if n > max {
		n = max
	}
	return n, nil
}
