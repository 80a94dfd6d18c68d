package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/themobileprof/momvitals-be/internal/risk"
)

// Origins of an assessment
const (
	OriginAssess = "assess"
	OriginVitals = "vitals"
	OriginChat   = "chat"
)

// Entry captures one assessment. Only the outcome is kept, never the readings.
type Entry struct {
	ID            string
	UserID        string
	Origin        string
	OverallRisk   risk.Level
	HealthScore   int
	Specialist    string
	Emergency     bool
	InsightSource string
	At            time.Time
}

// Summary is a read-friendly view of an audit record.
type Summary struct {
	AuditID       string `json:"audit_id"`
	UserID        string `json:"user_id,omitempty"`
	Origin        string `json:"origin"`
	OverallRisk   string `json:"overall_risk"`
	HealthScore   int    `json:"health_score"`
	Specialist    string `json:"specialist"`
	Emergency     bool   `json:"emergency"`
	InsightSource string `json:"insight_source,omitempty"`
	At            string `json:"at"`
}

// Store is an append-only audit trail
type Store interface {
	Insert(ctx context.Context, entry Entry) (Summary, error)
	Latest(ctx context.Context, userID string, limit int) ([]Summary, error)
}

const (
	defaultLimit = 10
	maxLimit     = 50
	timeLayout   = "2006-01-02T15:04:05.000000000Z07:00"
)

// FromAssessment builds an entry for a finished assessment
func FromAssessment(userID, origin string, a risk.Assessment, insightSource string) Entry {
	return Entry{
		UserID:        userID,
		Origin:        origin,
		OverallRisk:   a.OverallRisk,
		HealthScore:   a.HealthScore,
		Specialist:    a.RecommendedSpecialist,
		Emergency:     a.Emergency,
		InsightSource: insightSource,
	}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

func summarize(entry Entry) (Entry, Summary) {
	if entry.At.IsZero() {
		entry.At = time.Now()
	}
	entry.At = entry.At.UTC()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	return entry, Summary{
		AuditID:       entry.ID,
		UserID:        entry.UserID,
		Origin:        entry.Origin,
		OverallRisk:   string(entry.OverallRisk),
		HealthScore:   entry.HealthScore,
		Specialist:    entry.Specialist,
		Emergency:     entry.Emergency,
		InsightSource: entry.InsightSource,
		At:            entry.At.Format(time.RFC3339),
	}
}

// SQLiteStore is a SQLite-backed store; safe for concurrent use.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the audit database at path
func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS audits (
			id TEXT PRIMARY KEY,
			user_id TEXT,
			origin TEXT,
			overall_risk TEXT,
			health_score INTEGER,
			specialist TEXT,
			emergency INTEGER,
			insight_source TEXT,
			at_utc TEXT
		);
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Insert(ctx context.Context, entry Entry) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, sum := summarize(entry)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO audits (id, user_id, origin, overall_risk, health_score, specialist, emergency, insight_source, at_utc)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, entry.ID, entry.UserID, entry.Origin, string(entry.OverallRisk), entry.HealthScore,
		entry.Specialist, entry.Emergency, entry.InsightSource, entry.At.Format(timeLayout))
	if err != nil {
		return Summary{}, fmt.Errorf("insert audit: %w", err)
	}
	return sum, nil
}

// Latest returns the newest entries first. An empty userID lists every user.
func (s *SQLiteStore) Latest(ctx context.Context, userID string, limit int) ([]Summary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, origin, overall_risk, health_score, specialist, emergency, insight_source, at_utc
		FROM audits
		WHERE ? = '' OR user_id = ?
		ORDER BY at_utc DESC, rowid DESC
		LIMIT ?
	`, userID, userID, clampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query audits: %w", err)
	}
	defer rows.Close()

	out := make([]Summary, 0)
	for rows.Next() {
		var (
			sEntry Summary
			at     string
		)
		if err := rows.Scan(&sEntry.AuditID, &sEntry.UserID, &sEntry.Origin, &sEntry.OverallRisk,
			&sEntry.HealthScore, &sEntry.Specialist, &sEntry.Emergency, &sEntry.InsightSource, &at); err != nil {
			return nil, fmt.Errorf("scan audit: %w", err)
		}
		if t, err := time.Parse(timeLayout, at); err == nil {
			sEntry.At = t.Format(time.RFC3339)
		} else {
			sEntry.At = at
		}
		out = append(out, sEntry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audits: %w", err)
	}
	return out, nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// MemoryStore is a lightweight fallback for tests and offline use. It keeps
// the newest maxLimit entries.
type MemoryStore struct {
	mu      sync.Mutex
	entries []Summary
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: []Summary{}}
}

func (m *MemoryStore) Insert(_ context.Context, entry Entry) (Summary, error) {
	_, sum := summarize(entry)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries = append(m.entries, sum)
	if len(m.entries) > maxLimit {
		m.entries = m.entries[len(m.entries)-maxLimit:]
	}
	return sum, nil
}

func (m *MemoryStore) Latest(_ context.Context, userID string, limit int) ([]Summary, error) {
	limit = clampLimit(limit)

	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Summary, 0, limit)
	for i := len(m.entries) - 1; i >= 0 && len(out) < limit; i-- {
		if userID != "" && m.entries[i].UserID != userID {
			continue
		}
		out = append(out, m.entries[i])
	}
	return out, nil
}
