package db

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE EXTENSION IF NOT EXISTS pgcrypto`,
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		email TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		display_name TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS vitals_logs (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		blood_sugar DOUBLE PRECISION,
		systolic DOUBLE PRECISION,
		diastolic DOUBLE PRECISION,
		bmi DOUBLE PRECISION,
		weight_kg DOUBLE PRECISION,
		height_cm DOUBLE PRECISION,
		pregnancy_week INTEGER,
		age INTEGER,
		fetal_kicks INTEGER,
		symptoms TEXT NOT NULL DEFAULT '',
		body_part TEXT NOT NULL DEFAULT '',
		overall_risk TEXT NOT NULL,
		health_score INTEGER NOT NULL,
		streak INTEGER NOT NULL DEFAULT 1,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_vitals_logs_user_created ON vitals_logs (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS medication_reminders (
		id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		reminder_time TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS plans (
		id SERIAL PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS features (
		id SERIAL PRIMARY KEY,
		feature_key TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS plan_features (
		plan_id INTEGER NOT NULL REFERENCES plans(id) ON DELETE CASCADE,
		feature_id INTEGER NOT NULL REFERENCES features(id) ON DELETE CASCADE,
		PRIMARY KEY (plan_id, feature_id)
	)`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id SERIAL PRIMARY KEY,
		user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		plan_id INTEGER NOT NULL REFERENCES plans(id),
		status TEXT NOT NULL DEFAULT 'active',
		starts_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		ends_at TIMESTAMPTZ
	)`,
	`INSERT INTO features (feature_key, name, description)
		VALUES ('premium_routines', 'Premium Routines', 'Medication reminders, lab report analysis and lifestyle coaching')
		ON CONFLICT (feature_key) DO NOTHING`,
}

// Migrate creates the tables if they do not exist yet
func (db *DB) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
