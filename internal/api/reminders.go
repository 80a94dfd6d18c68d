package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/internal/api/middleware"
	"github.com/themobileprof/momvitals-be/internal/db"
)

const reminderTimeLayout = "15:04"

// ReminderHandler handles medication reminder endpoints
type ReminderHandler struct {
	store  ReminderStore
	loc    *time.Location
	logger *zap.Logger
	now    func() time.Time
}

// NewReminderHandler creates a new reminder handler. Reminder times are wall
// clock times in loc.
func NewReminderHandler(store ReminderStore, loc *time.Location, logger *zap.Logger) *ReminderHandler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderHandler{
		store:  store,
		loc:    loc,
		logger: logger,
		now:    time.Now,
	}
}

// CreateReminderRequest represents a reminder creation request
type CreateReminderRequest struct {
	Name   string `json:"name" binding:"required"`
	Time   string `json:"time" binding:"required"`
	Active *bool  `json:"active"`
}

// UpdateReminderRequest represents a reminder update request
type UpdateReminderRequest struct {
	Name   *string `json:"name"`
	Time   *string `json:"time"`
	Active *bool   `json:"active"`
}

// ReminderResponse represents a reminder response
type ReminderResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Time      string     `json:"time"`
	Active    bool       `json:"active"`
	NextAt    *time.Time `json:"next_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateReminder creates a new reminder
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID := middleware.GetUserID(c)

	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	clock, err := normalizeClock(req.Time)
	if name == "" || err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and time (HH:MM) are required"})
		return
	}

	reminder := &db.Reminder{
		UserID: userID,
		Name:   name,
		Time:   clock,
		Active: req.Active == nil || *req.Active,
	}

	if err := h.store.CreateReminder(c.Request.Context(), reminder); err != nil {
		h.logger.Error("create reminder failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create reminder"})
		return
	}

	c.JSON(http.StatusCreated, h.toResponse(reminder))
}

// GetReminders retrieves all reminders for the current user
func (h *ReminderHandler) GetReminders(c *gin.Context) {
	userID := middleware.GetUserID(c)

	reminders, err := h.store.GetUserReminders(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("list reminders failed", zap.String("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve reminders"})
		return
	}

	response := make([]ReminderResponse, 0, len(reminders))
	for i := range reminders {
		response = append(response, h.toResponse(&reminders[i]))
	}

	c.JSON(http.StatusOK, gin.H{
		"reminders": response,
		"count":     len(response),
	})
}

// UpdateReminder updates an existing reminder
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	userID := middleware.GetUserID(c)
	reminderID := c.Param("id")

	var req UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reminder, err := h.store.GetReminderByID(c.Request.Context(), userID, reminderID)
	if err != nil {
		h.notFoundOrError(c, err, "Failed to retrieve reminder")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		reminder.Name = name
	}
	if req.Time != nil {
		clock, err := normalizeClock(*req.Time)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "time must be HH:MM"})
			return
		}
		reminder.Time = clock
	}
	if req.Active != nil {
		reminder.Active = *req.Active
	}

	if err := h.store.UpdateReminder(c.Request.Context(), reminder); err != nil {
		h.notFoundOrError(c, err, "Failed to update reminder")
		return
	}

	c.JSON(http.StatusOK, h.toResponse(reminder))
}

// DeleteReminder deletes a reminder
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID := middleware.GetUserID(c)

	if err := h.store.DeleteReminder(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.notFoundOrError(c, err, "Failed to delete reminder")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully"})
}

func (h *ReminderHandler) notFoundOrError(c *gin.Context, err error, message string) {
	if errors.Is(err, db.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Reminder not found"})
		return
	}
	h.logger.Error(strings.ToLower(message), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": message})
}

func (h *ReminderHandler) toResponse(r *db.Reminder) ReminderResponse {
	resp := ReminderResponse{
		ID:        r.ID,
		Name:      r.Name,
		Time:      r.Time,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Active {
		if next, err := NextOccurrence(r.Time, h.now().In(h.loc)); err == nil {
			resp.NextAt = &next
		}
	}
	return resp
}

// normalizeClock accepts "7:05" or "07:05" and returns "07:05"
func normalizeClock(s string) (string, error) {
	t, err := time.Parse(reminderTimeLayout, strings.TrimSpace(s))
	if err != nil {
		return "", err
	}
	return t.Format(reminderTimeLayout), nil
}

// NextOccurrence returns the next time the daily clock time falls at or
// after now, in now's location
func NextOccurrence(clock string, now time.Time) (time.Time, error) {
	t, err := time.Parse(reminderTimeLayout, clock)
	if err != nil {
		return time.Time{}, err
	}
	next := time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, now.Location())
	if next.Before(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next, nil
}
