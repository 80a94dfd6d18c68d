package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/themobileprof/momvitals-be/internal/api/middleware"
	"github.com/themobileprof/momvitals-be/internal/db"
	"github.com/themobileprof/momvitals-be/internal/subscription"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeStore is an in-memory implementation of the handler stores
type fakeStore struct {
	mu        sync.Mutex
	seq       int
	users     map[string]*db.User
	logs      []db.VitalsLog
	reminders map[string]*db.Reminder
	clock     time.Time
	failSave  bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[string]*db.User),
		reminders: make(map[string]*db.Reminder),
		clock:     time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
	}
}

func (f *fakeStore) nextID() string {
	f.seq++
	return "id-" + strconv.Itoa(f.seq)
}

func (f *fakeStore) CreateUser(_ context.Context, user *db.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.Email = strings.ToLower(user.Email)
	for _, u := range f.users {
		if u.Email == user.Email {
			return db.ErrAlreadyExists
		}
	}
	user.ID = f.nextID()
	user.CreatedAt, user.UpdatedAt = f.clock, f.clock
	stored := *user
	f.users[user.ID] = &stored
	return nil
}

func (f *fakeStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			out := *u
			return &out, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) GetUserByID(_ context.Context, id string) (*db.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeStore) SaveVitalsLog(_ context.Context, log *db.VitalsLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSave {
		return errors.New("connection refused")
	}
	log.ID = f.nextID()
	f.clock = f.clock.Add(time.Minute)
	log.CreatedAt = f.clock
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeStore) LatestVitalsLog(ctx context.Context, userID string) (*db.VitalsLog, error) {
	logs, _ := f.VitalsHistory(ctx, userID, 1)
	if len(logs) == 0 {
		return nil, db.ErrNotFound
	}
	return &logs[0], nil
}

func (f *fakeStore) VitalsHistory(_ context.Context, userID string, limit int) ([]db.VitalsLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.VitalsLog
	for i := len(f.logs) - 1; i >= 0 && len(out) < limit; i-- {
		if f.logs[i].UserID == userID {
			out = append(out, f.logs[i])
		}
	}
	return out, nil
}

func (f *fakeStore) CreateReminder(_ context.Context, r *db.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r.ID = f.nextID()
	r.CreatedAt, r.UpdatedAt = f.clock, f.clock
	stored := *r
	f.reminders[r.ID] = &stored
	return nil
}

func (f *fakeStore) GetUserReminders(_ context.Context, userID string) ([]db.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []db.Reminder
	for _, r := range f.reminders {
		if r.UserID == userID {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (f *fakeStore) GetReminderByID(_ context.Context, userID, id string) (*db.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return nil, db.ErrNotFound
	}
	out := *r
	return &out, nil
}

func (f *fakeStore) UpdateReminder(_ context.Context, r *db.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.reminders[r.ID]
	if !ok || existing.UserID != r.UserID {
		return db.ErrNotFound
	}
	stored := *r
	f.reminders[r.ID] = &stored
	return nil
}

func (f *fakeStore) DeleteReminder(_ context.Context, userID, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok || r.UserID != userID {
		return db.ErrNotFound
	}
	delete(f.reminders, id)
	return nil
}

type fakeFeatures struct {
	keys map[string][]string
	err  error
}

func (f *fakeFeatures) HasFeature(_ context.Context, userID, featureKey string) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, k := range f.keys[userID] {
		if k == featureKey {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeFeatures) GetUserFeatures(_ context.Context, userID string) ([]subscription.UserFeature, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []subscription.UserFeature
	for _, k := range f.keys[userID] {
		out = append(out, subscription.UserFeature{FeatureKey: k, Name: k})
	}
	return out, nil
}

// asUser stands in for JWTAuth in handler tests
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

func doJSON(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func doAuthed(t *testing.T, r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
