package db

import (
	"context"
	"database/sql"
	"fmt"
)

// CreateReminder creates a new medication reminder
func (db *DB) CreateReminder(ctx context.Context, reminder *Reminder) error {
	query := `
		INSERT INTO medication_reminders (user_id, name, reminder_time, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`

	err := db.QueryRowContext(ctx, query,
		reminder.UserID, reminder.Name, reminder.Time, reminder.Active,
	).Scan(&reminder.ID, &reminder.CreatedAt, &reminder.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}

	return nil
}

// GetUserReminders retrieves all reminders for a user
func (db *DB) GetUserReminders(ctx context.Context, userID string) ([]Reminder, error) {
	query := `
		SELECT id, user_id, name, reminder_time, active, created_at, updated_at
		FROM medication_reminders
		WHERE user_id = $1
		ORDER BY reminder_time ASC
	`

	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reminders: %w", err)
	}
	defer rows.Close()

	reminders := make([]Reminder, 0)
	for rows.Next() {
		var reminder Reminder
		if err := rows.Scan(&reminder.ID, &reminder.UserID, &reminder.Name, &reminder.Time,
			&reminder.Active, &reminder.CreatedAt, &reminder.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, reminder)
	}

	return reminders, nil
}

// GetReminderByID retrieves a reminder owned by userID
func (db *DB) GetReminderByID(ctx context.Context, userID, id string) (*Reminder, error) {
	query := `
		SELECT id, user_id, name, reminder_time, active, created_at, updated_at
		FROM medication_reminders
		WHERE id = $1 AND user_id = $2
	`

	reminder := &Reminder{}
	err := db.QueryRowContext(ctx, query, id, userID).Scan(
		&reminder.ID, &reminder.UserID, &reminder.Name, &reminder.Time,
		&reminder.Active, &reminder.CreatedAt, &reminder.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get reminder: %w", err)
	}

	return reminder, nil
}

// UpdateReminder updates a reminder owned by reminder.UserID
func (db *DB) UpdateReminder(ctx context.Context, reminder *Reminder) error {
	query := `
		UPDATE medication_reminders
		SET name = $1, reminder_time = $2, active = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $4 AND user_id = $5
	`

	result, err := db.ExecContext(ctx, query,
		reminder.Name, reminder.Time, reminder.Active, reminder.ID, reminder.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to update reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteReminder deletes a reminder owned by userID
func (db *DB) DeleteReminder(ctx context.Context, userID, id string) error {
	query := `DELETE FROM medication_reminders WHERE id = $1 AND user_id = $2`

	result, err := db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}
