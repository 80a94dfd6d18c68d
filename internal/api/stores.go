package api

import (
	"context"

	"github.com/themobileprof/momvitals-be/internal/db"
	"github.com/themobileprof/momvitals-be/internal/subscription"
)

// UserStore is the user persistence used by AuthHandler
type UserStore interface {
	CreateUser(ctx context.Context, user *db.User) error
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	GetUserByID(ctx context.Context, id string) (*db.User, error)
}

// VitalsStore is the vitals log persistence used by VitalsHandler
type VitalsStore interface {
	SaveVitalsLog(ctx context.Context, log *db.VitalsLog) error
	LatestVitalsLog(ctx context.Context, userID string) (*db.VitalsLog, error)
	VitalsHistory(ctx context.Context, userID string, limit int) ([]db.VitalsLog, error)
}

// ReminderStore is the reminder persistence used by ReminderHandler
type ReminderStore interface {
	CreateReminder(ctx context.Context, reminder *db.Reminder) error
	GetUserReminders(ctx context.Context, userID string) ([]db.Reminder, error)
	GetReminderByID(ctx context.Context, userID, id string) (*db.Reminder, error)
	UpdateReminder(ctx context.Context, reminder *db.Reminder) error
	DeleteReminder(ctx context.Context, userID, id string) error
}

// FeatureLister lists the subscription features a user holds
type FeatureLister interface {
	GetUserFeatures(ctx context.Context, userID string) ([]subscription.UserFeature, error)
}

var (
	_ UserStore     = (*db.DB)(nil)
	_ VitalsStore   = (*db.DB)(nil)
	_ ReminderStore = (*db.DB)(nil)
	_ FeatureLister = (*subscription.Manager)(nil)
)
