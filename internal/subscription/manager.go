package subscription

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoDatabase is returned by a Manager built without a connection
var ErrNoDatabase = errors.New("subscription: db not initialized")

// activeFeatures joins a user's live subscriptions to the features their
// plans unlock. $1 is the user id.
const activeFeatures = `
FROM subscriptions s
JOIN plans p ON p.id = s.plan_id AND p.active = TRUE
JOIN plan_features pf ON pf.plan_id = p.id
JOIN features f ON f.id = pf.feature_id
WHERE s.user_id = $1
  AND s.status = 'active'
  AND s.starts_at <= NOW()
  AND (s.ends_at IS NULL OR s.ends_at > NOW())`

// Manager answers feature questions from the plans a user subscribes to
type Manager struct {
	db *sql.DB
}

func NewManager(db *sql.DB) *Manager {
	return &Manager{db: db}
}

// HasFeature reports whether any active plan of the user includes featureKey
func (m *Manager) HasFeature(ctx context.Context, userID string, featureKey string) (bool, error) {
	if m.db == nil {
		return false, ErrNoDatabase
	}

	q := `SELECT EXISTS (SELECT 1 ` + activeFeatures + `
  AND f.feature_key = $2);`

	var exists bool
	if err := m.db.QueryRowContext(ctx, q, userID, featureKey).Scan(&exists); err != nil {
		return false, fmt.Errorf("check feature access: %w", err)
	}
	return exists, nil
}

// UserFeature represents a feature available to a user
type UserFeature struct {
	FeatureKey  string `json:"feature_key"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// GetUserFeatures returns every feature the user's active plans unlock,
// ordered by key
func (m *Manager) GetUserFeatures(ctx context.Context, userID string) ([]UserFeature, error) {
	if m.db == nil {
		return nil, ErrNoDatabase
	}

	q := `SELECT DISTINCT f.feature_key, f.name, f.description ` + activeFeatures + `
ORDER BY f.feature_key;`

	rows, err := m.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("query user features: %w", err)
	}
	defer rows.Close()

	features := make([]UserFeature, 0)
	for rows.Next() {
		var f UserFeature
		if err := rows.Scan(&f.FeatureKey, &f.Name, &f.Description); err != nil {
			return nil, fmt.Errorf("scan feature: %w", err)
		}
		features = append(features, f)
	}
	return features, rows.Err()
}
