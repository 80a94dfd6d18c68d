package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/themobileprof/momvitals-be/internal/risk"
)

const vitalsColumns = `id, user_id, blood_sugar, systolic, diastolic, bmi, weight_kg, height_cm,
		pregnancy_week, age, fetal_kicks, symptoms, body_part, overall_risk, health_score, streak, created_at`

// SaveVitalsLog stores a submitted snapshot and fills in ID and CreatedAt
func (db *DB) SaveVitalsLog(ctx context.Context, log *VitalsLog) error {
	query := `
		INSERT INTO vitals_logs (user_id, blood_sugar, systolic, diastolic, bmi, weight_kg, height_cm,
			pregnancy_week, age, fetal_kicks, symptoms, body_part, overall_risk, health_score, streak)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at
	`

	v := log.Vitals
	err := db.QueryRowContext(ctx, query,
		log.UserID, v.BloodSugarMgDl, v.SystolicMmHg, v.DiastolicMmHg, v.BMI, v.WeightKg, v.HeightCm,
		v.PregnancyWeek, v.Age, v.FetalKicks, v.SymptomsText, v.BodyPart,
		string(log.OverallRisk), log.HealthScore, log.Streak,
	).Scan(&log.ID, &log.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save vitals log: %w", err)
	}

	return nil
}

// LatestVitalsLog returns the most recent log for a user
func (db *DB) LatestVitalsLog(ctx context.Context, userID string) (*VitalsLog, error) {
	query := `SELECT ` + vitalsColumns + `
		FROM vitals_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`

	log, err := scanVitalsLog(db.QueryRowContext(ctx, query, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest vitals log: %w", err)
	}

	return log, nil
}

// VitalsHistory returns up to limit logs, newest first
func (db *DB) VitalsHistory(ctx context.Context, userID string, limit int) ([]VitalsLog, error) {
	query := `SELECT ` + vitalsColumns + `
		FROM vitals_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get vitals history: %w", err)
	}
	defer rows.Close()

	logs := make([]VitalsLog, 0, limit)
	for rows.Next() {
		log, err := scanVitalsLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan vitals log: %w", err)
		}
		logs = append(logs, *log)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vitals history: %w", err)
	}

	return logs, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanVitalsLog(s scanner) (*VitalsLog, error) {
	log := &VitalsLog{}
	v := &log.Vitals
	var level string
	err := s.Scan(
		&log.ID, &log.UserID, &v.BloodSugarMgDl, &v.SystolicMmHg, &v.DiastolicMmHg, &v.BMI,
		&v.WeightKg, &v.HeightCm, &v.PregnancyWeek, &v.Age, &v.FetalKicks, &v.SymptomsText, &v.BodyPart,
		&level, &log.HealthScore, &log.Streak, &log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	log.OverallRisk = risk.Level(level)
	return log, nil
}
