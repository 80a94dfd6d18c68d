package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newReminderRouter(store *fakeStore, userID string, now time.Time) *gin.Engine {
	h := NewReminderHandler(store, time.UTC, nil)
	h.now = func() time.Time { return now }

	r := gin.New()
	g := r.Group("/api/reminders", asUser(userID))
	g.GET("", h.GetReminders)
	g.POST("", h.CreateReminder)
	g.PUT("/:id", h.UpdateReminder)
	g.DELETE("/:id", h.DeleteReminder)
	return r
}

func TestReminderHandler_CRUD(t *testing.T) {
	store := newFakeStore()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	r := newReminderRouter(store, "u1", now)

	w := doJSON(t, r, http.MethodPost, "/api/reminders", map[string]interface{}{"name": "Iron tablet", "time": "7:30"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created ReminderResponse
	decode(t, w, &created)
	assert.Equal(t, "07:30", created.Time)
	assert.True(t, created.Active)
	require.NotNil(t, created.NextAt)
	assert.Equal(t, time.Date(2026, 3, 11, 7, 30, 0, 0, time.UTC), created.NextAt.UTC())

	w = doJSON(t, r, http.MethodPost, "/api/reminders", map[string]interface{}{"name": "Folic acid", "time": "21:00", "active": false})
	require.Equal(t, http.StatusCreated, w.Code)
	var inactive ReminderResponse
	decode(t, w, &inactive)
	assert.False(t, inactive.Active)
	assert.Nil(t, inactive.NextAt)

	w = doJSON(t, r, http.MethodGet, "/api/reminders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Reminders []ReminderResponse `json:"reminders"`
		Count     int                `json:"count"`
	}
	decode(t, w, &list)
	assert.Equal(t, 2, list.Count)

	w = doJSON(t, r, http.MethodPut, "/api/reminders/"+created.ID, map[string]interface{}{"time": "10:15", "active": true})
	require.Equal(t, http.StatusOK, w.Code)
	var updated ReminderResponse
	decode(t, w, &updated)
	assert.Equal(t, "10:15", updated.Time)
	assert.Equal(t, "Iron tablet", updated.Name)
	assert.Equal(t, time.Date(2026, 3, 10, 10, 15, 0, 0, time.UTC), updated.NextAt.UTC())

	w = doJSON(t, r, http.MethodDelete, "/api/reminders/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = doJSON(t, r, http.MethodDelete, "/api/reminders/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestReminderHandler_Validation(t *testing.T) {
	store := newFakeStore()
	r := newReminderRouter(store, "u1", time.Now())

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{name: "missing time", body: map[string]interface{}{"name": "Iron"}},
		{name: "bad time", body: map[string]interface{}{"name": "Iron", "time": "25:00"}},
		{name: "blank name", body: map[string]interface{}{"name": "   ", "time": "08:00"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, r, http.MethodPost, "/api/reminders", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	w := doJSON(t, r, http.MethodPost, "/api/reminders", map[string]interface{}{"name": "Iron", "time": "08:00"})
	require.Equal(t, http.StatusCreated, w.Code)
	var created ReminderResponse
	decode(t, w, &created)

	w = doJSON(t, r, http.MethodPut, "/api/reminders/"+created.ID, map[string]interface{}{"time": "noon"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	other := newReminderRouter(store, "u2", time.Now())
	w = doJSON(t, other, http.MethodPut, "/api/reminders/"+created.ID, map[string]interface{}{"active": false})
	assert.Equal(t, http.StatusNotFound, w.Code, "reminders are scoped to their owner")
}

func TestNextOccurrence(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	next, err := NextOccurrence("09:00", now)
	require.NoError(t, err)
	assert.Equal(t, now, next)

	next, err = NextOccurrence("08:59", now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 11, 8, 59, 0, 0, time.UTC), next)

	_, err = NextOccurrence("9am", now)
	assert.Error(t, err)
}
