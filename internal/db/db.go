package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/themobileprof/momvitals-be/internal/risk"
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// Pool holds connection pool limits. Zero values keep the driver defaults.
type Pool struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects using a postgres:// URL such as DATABASE_URL and verifies the
// connection before returning
func Open(ctx context.Context, url string, pool Pool) (*DB, error) {
	sqlDB, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{sqlDB}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// User represents a user in the database
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// VitalsLog is one submitted vitals form together with the score it produced
type VitalsLog struct {
	ID          string
	UserID      string
	Vitals      risk.Vitals
	OverallRisk risk.Level
	HealthScore int
	Streak      int
	CreatedAt   time.Time
}

// Reminder is a daily medication reminder. Time is local wall-clock "15:04".
type Reminder struct {
	ID        string
	UserID    string
	Name      string
	Time      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
