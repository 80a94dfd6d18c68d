package profile

import (
	"context"
	"time"

	"github.com/themobileprof/momvitals-be/internal/risk"
)

// Profile is the per-user state the dashboard and chat read between requests:
// the latest snapshot, the last computed score and the logging streak.
type Profile struct {
	UserID      string      `json:"user_id"`
	Vitals      risk.Vitals `json:"vitals"`
	HealthScore int         `json:"health_score,omitempty"`
	Streak      int         `json:"streak"`
	LastLogAt   time.Time   `json:"last_log_at,omitempty"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// PriorScore returns the stored score for the engine, or nil when none was kept
func (p Profile) PriorScore() *int {
	if p.HealthScore <= 0 {
		return nil
	}
	s := p.HealthScore
	return &s
}

// Apply records a new snapshot and the assessment made from it. Escalated
// scores (HIGH and CRITICAL) are never kept as the prior score.
func (p *Profile) Apply(v risk.Vitals, a risk.Assessment, now time.Time) {
	p.Vitals = v
	p.UpdatedAt = now
	if !a.OverallRisk.AtLeast(risk.LevelHigh) {
		p.HealthScore = a.HealthScore
	}
}

// Cache stores profiles keyed by user ID. Implementations are safe for
// concurrent use.
type Cache interface {
	Get(ctx context.Context, userID string) (Profile, bool, error)
	Put(ctx context.Context, p Profile) error
	Delete(ctx context.Context, userID string) error
}
