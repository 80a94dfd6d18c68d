package api

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themobileprof/momvitals-be/internal/assistant"
	"github.com/themobileprof/momvitals-be/internal/audit"
	"github.com/themobileprof/momvitals-be/internal/circuitbreaker"
	"github.com/themobileprof/momvitals-be/internal/classifier"
	"github.com/themobileprof/momvitals-be/internal/memory"
	"github.com/themobileprof/momvitals-be/internal/profile"
	"github.com/themobileprof/momvitals-be/internal/reminder"
	"github.com/themobileprof/momvitals-be/internal/risk"
	"github.com/themobileprof/momvitals-be/internal/routine"
)

func TestChatHandler(t *testing.T) {
	engine := risk.NewEngine()
	trail := audit.NewMemoryStore()
	assessor := NewAssessor(engine, nil, routine.NewCatalog(), trail, nil)
	chat := assistant.NewEngine(classifier.NewClassifier(), engine, profile.NewMemoryCache(time.Hour), nil)
	h := NewChatHandler(chat, assessor, nil)

	r := gin.New()
	g := r.Group("/api/chat", asUser("u1"))
	g.GET("/:channel", h.Greeting)
	g.POST("/:channel", h.Send)
	r.GET("/api/audit", asUser("u1"), NewAuditHandler(trail, nil).Latest)

	t.Run("greeting", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/chat/doctor", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var reply assistant.Reply
		decode(t, w, &reply)
		assert.Equal(t, "Hello, I'm your doctor. How can I help you?", reply.Content)
	})

	t.Run("unknown channel", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/chat/nurse", ChatRequest{Message: "hi"})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("empty message", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/chat/ai", ChatRequest{Message: " "})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("canned reply is not audited", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/chat/doctor", ChatRequest{Message: "I went shopping"})
		require.Equal(t, http.StatusOK, w.Code)
		var reply assistant.Reply
		decode(t, w, &reply)
		assert.Equal(t, "I understand. Please monitor your symptoms.", reply.Content)

		entries, err := trail.Latest(context.Background(), "u1", 10)
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("vitals in chat are assessed and audited", func(t *testing.T) {
		w := doJSON(t, r, http.MethodPost, "/api/chat/ai", ChatRequest{Message: "my bp is 80/50"})
		require.Equal(t, http.StatusOK, w.Code)
		var reply assistant.Reply
		decode(t, w, &reply)
		require.NotNil(t, reply.Assessment)
		assert.Equal(t, risk.BPEmergencyLow, reply.Assessment.BPTier)

		w = doJSON(t, r, http.MethodGet, "/api/audit?limit=5", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Entries []audit.Summary `json:"entries"`
			Count   int             `json:"count"`
		}
		decode(t, w, &resp)
		require.Equal(t, 1, resp.Count)
		assert.Equal(t, audit.OriginChat, resp.Entries[0].Origin)
		assert.Equal(t, string(risk.LevelCritical), resp.Entries[0].OverallRisk)
		assert.True(t, resp.Entries[0].Emergency)
	})

	t.Run("audit bad limit", func(t *testing.T) {
		w := doJSON(t, r, http.MethodGet, "/api/audit?limit=-1", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

type fakePinger struct{ err error }

func (p fakePinger) PingContext(context.Context) error { return p.err }

type fakeBreaker struct{ state circuitbreaker.State }

func (b fakeBreaker) Enabled() bool                      { return true }
func (b fakeBreaker) BreakerState() circuitbreaker.State { return b.state }

func TestChatHandler_History(t *testing.T) {
	chat := assistant.NewEngine(classifier.NewClassifier(), risk.NewEngine(), nil, nil).WithHistory(memory.NewHistory(20))
	h := NewChatHandler(chat, nil, nil)

	r := gin.New()
	g := r.Group("/api/chat", asUser("u1"))
	g.POST("/:channel", h.Send)
	g.GET("/:channel/history", h.History)
	g.DELETE("/:channel/history", h.ClearHistory)

	w := doJSON(t, r, http.MethodPost, "/api/chat/ai", ChatRequest{Message: "remind me to take my folic acid at 7:30 am"})
	require.Equal(t, http.StatusOK, w.Code)
	var reply assistant.Reply
	decode(t, w, &reply)
	require.NotNil(t, reply.Reminder)
	assert.Equal(t, reminder.TypeMedication, reply.Reminder.Type)
	assert.Equal(t, "07:30", reply.Reminder.Time)

	w = doJSON(t, r, http.MethodGet, "/api/chat/ai/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Messages []memory.Message `json:"messages"`
		Count    int              `json:"count"`
	}
	decode(t, w, &resp)
	require.Equal(t, 2, resp.Count)
	assert.Equal(t, "user", resp.Messages[0].Role)
	assert.Equal(t, "ai", resp.Messages[1].Role)

	w = doJSON(t, r, http.MethodGet, "/api/chat/nurse/history", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, r, http.MethodDelete, "/api/chat/ai/history", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doJSON(t, r, http.MethodGet, "/api/chat/ai/history", nil)
	decode(t, w, &resp)
	assert.Zero(t, resp.Count)
	assert.Empty(t, resp.Messages)
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		pinger     Pinger
		wantStatus int
		wantDB     string
	}{
		{name: "healthy", pinger: fakePinger{}, wantStatus: http.StatusOK, wantDB: "ok"},
		{name: "database down", pinger: fakePinger{err: errors.New("refused")}, wantStatus: http.StatusServiceUnavailable, wantDB: "unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/health", NewHealthHandler(tt.pinger, fakeBreaker{state: circuitbreaker.StateOpen}).Health)

			w := doJSON(t, r, http.MethodGet, "/health", nil)
			assert.Equal(t, tt.wantStatus, w.Code)

			var body struct {
				Database string `json:"database"`
				Insight  struct {
					Enabled bool   `json:"enabled"`
					Breaker string `json:"breaker"`
				} `json:"insight"`
			}
			decode(t, w, &body)
			assert.Equal(t, tt.wantDB, body.Database)
			assert.Equal(t, "open", body.Insight.Breaker)
		})
	}
}
