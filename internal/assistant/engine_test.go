package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themobileprof/momvitals-be/internal/classifier"
	"github.com/themobileprof/momvitals-be/internal/fallback"
	"github.com/themobileprof/momvitals-be/internal/memory"
	"github.com/themobileprof/momvitals-be/internal/profile"
	"github.com/themobileprof/momvitals-be/internal/reminder"
	"github.com/themobileprof/momvitals-be/internal/risk"
)

type stubAnswerer struct {
	answer string
	err    error
	week   *int
	calls  int
}

func (s *stubAnswerer) Answer(_ context.Context, _ string, week *int) (string, error) {
	s.calls++
	s.week = week
	return s.answer, s.err
}

func newTestEngine(cache profile.Cache) *Engine {
	e := NewEngine(classifier.NewClassifier(), risk.NewEngine(), cache, nil)
	e.now = func() time.Time { return time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC) }
	return e
}

func TestEngine_ProcessMessage_CannedReplies(t *testing.T) {
	e := newTestEngine(nil)
	ctx := context.Background()

	tests := []struct {
		name     string
		channel  Channel
		message  string
		wantKind string
		want     string
	}{
		{name: "doctor canned", channel: ChannelDoctor, message: "I have a question about my diet", wantKind: KindCanned, want: "I understand. Please monitor your symptoms."},
		{name: "ai canned", channel: ChannelAI, message: "I went for a walk today", wantKind: KindCanned, want: "Thanks for sharing. Stay healthy and monitor vitals."},
		{name: "greeting", channel: ChannelDoctor, message: "hello", wantKind: KindGreeting, want: greetings[ChannelDoctor]},
		{name: "thanks", channel: ChannelAI, message: "thank you so much", wantKind: KindGratitude, want: gratitudeReplies[ChannelAI]},
		{name: "document mention", channel: ChannelDoctor, message: "I attached my lab report", wantKind: KindDocument, want: documentAcks[ChannelDoctor]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := e.ProcessMessage(ctx, Request{UserID: "u1", Channel: tt.channel, Message: tt.message})
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, r.Kind)
			assert.Equal(t, tt.want, r.Content)
			assert.Equal(t, string(tt.channel), r.Sender)
			assert.Nil(t, r.Assessment)
		})
	}
}

func TestEngine_ProcessMessage_Document(t *testing.T) {
	e := newTestEngine(nil)

	r, err := e.ProcessMessage(context.Background(), Request{Channel: ChannelAI, Document: "scan.pdf"})
	require.NoError(t, err)
	assert.Equal(t, KindDocument, r.Kind)
	assert.Equal(t, "I've received the PDF. I can help analyze it.", r.Content)
}

func TestEngine_ProcessMessage_Errors(t *testing.T) {
	e := newTestEngine(nil)

	_, err := e.ProcessMessage(context.Background(), Request{Channel: ChannelDoctor, Message: "   "})
	assert.ErrorIs(t, err, ErrEmptyMessage)

	_, err = e.ProcessMessage(context.Background(), Request{Channel: "nurse", Message: "hi"})
	assert.Error(t, err)
}

func TestEngine_ProcessMessage_VitalsMergeIntoProfile(t *testing.T) {
	cache := profile.NewMemoryCache(time.Hour)
	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, profile.Profile{
		UserID:      "u1",
		Vitals:      risk.Vitals{SystolicMmHg: risk.Float(118), DiastolicMmHg: risk.Float(76), BMI: risk.Float(22), PregnancyWeek: risk.Int(24)},
		HealthScore: 77,
	}))
	e := newTestEngine(cache)

	r, err := e.ProcessMessage(ctx, Request{UserID: "u1", Channel: ChannelDoctor, Message: "hi doctor, my sugar is 55 this morning"})
	require.NoError(t, err)

	assert.Equal(t, KindVitals, r.Kind)
	assert.Equal(t, string(classifier.IntentVitals), r.Intent)
	require.NotNil(t, r.Assessment)
	assert.Equal(t, risk.LevelCritical, r.Assessment.OverallRisk)
	assert.Equal(t, risk.SugarEmergencyLow, r.Assessment.SugarTier)
	assert.Equal(t, risk.BPNormal, r.Assessment.BPTier, "cached BP is merged in")
	assert.Equal(t, risk.SugarSpecialist, r.Assessment.RecommendedSpecialist)
	assert.Equal(t, fallback.ActionEmergency, r.Action)
	assert.Contains(t, r.Content, "Noted: sugar 55 mg/dL.")

	p, ok, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, p.Vitals.BloodSugarMgDl)
	assert.Equal(t, 55.0, *p.Vitals.BloodSugarMgDl)
	require.NotNil(t, p.Vitals.SystolicMmHg)
	assert.Equal(t, 77, p.HealthScore, "critical score is not stored")
}

func TestEngine_ProcessMessage_TimesAreNotReadings(t *testing.T) {
	cache := profile.NewMemoryCache(time.Hour)
	ctx := context.Background()
	require.NoError(t, cache.Put(ctx, profile.Profile{
		UserID: "u1",
		Vitals: risk.Vitals{SystolicMmHg: risk.Float(118), DiastolicMmHg: risk.Float(76), BMI: risk.Float(22)},
	}))
	e := newTestEngine(cache)

	r, err := e.ProcessMessage(ctx, Request{UserID: "u1", Channel: ChannelDoctor, Message: "my sugar at 3am was 90"})
	require.NoError(t, err)

	require.NotNil(t, r.Assessment)
	assert.False(t, r.Assessment.Emergency)
	assert.Equal(t, risk.SugarNormal, r.Assessment.SugarTier)
	assert.NotEqual(t, risk.LevelCritical, r.Assessment.OverallRisk)
	assert.Empty(t, r.Action)
	assert.Contains(t, r.Content, "sugar 90 mg/dL")

	p, ok, err := cache.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, ok)
	require.NotNil(t, p.Vitals.BloodSugarMgDl)
	assert.Equal(t, 90.0, *p.Vitals.BloodSugarMgDl)

	r, err = e.ProcessMessage(ctx, Request{UserID: "u2", Channel: ChannelAI, Message: "should I check my sugar 2 times a day?"})
	require.NoError(t, err)
	assert.NotEqual(t, KindVitals, r.Kind)
	assert.Nil(t, r.Assessment)

	_, ok, err = cache.Get(ctx, "u2")
	require.NoError(t, err)
	assert.False(t, ok, "no profile is written without a reading")
}

func TestEngine_ProcessMessage_VitalsWithoutProfile(t *testing.T) {
	e := newTestEngine(nil)

	r, err := e.ProcessMessage(context.Background(), Request{Channel: ChannelAI, Message: "bp 118/76"})
	require.NoError(t, err)
	require.NotNil(t, r.Assessment)
	assert.Equal(t, risk.LevelStable, r.Assessment.OverallRisk)
	assert.Equal(t, risk.ScoreBaseline, r.Assessment.HealthScore)
	assert.Empty(t, r.Action)
}

func TestEngine_ProcessMessage_DangerSigns(t *testing.T) {
	e := newTestEngine(nil)

	tests := []struct {
		name       string
		message    string
		wantSign   string
		wantAction string
	}{
		{name: "bleeding is urgent", message: "I noticed some bleeding", wantSign: SignBleeding, wantAction: fallback.ActionEmergency},
		{name: "reduced kicks is urgent", message: "the baby is not kicking since yesterday", wantSign: SignReducedKicks, wantAction: fallback.ActionEmergency},
		{name: "mild dizziness", message: "feeling a little dizzy", wantSign: SignDizziness, wantAction: ""},
		{name: "severe headache escalates", message: "I have a terrible migraine", wantSign: SignHeadache, wantAction: fallback.ActionEmergency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := e.ProcessMessage(context.Background(), Request{Channel: ChannelDoctor, Message: tt.message})
			require.NoError(t, err)
			assert.Equal(t, KindDanger, r.Kind)
			require.NotEmpty(t, r.Signs)
			assert.Equal(t, tt.wantSign, r.Signs[0].Type)
			assert.Equal(t, tt.wantAction, r.Action)
		})
	}
}

func TestEngine_ProcessMessage_Answerer(t *testing.T) {
	ctx := context.Background()
	cache := profile.NewMemoryCache(time.Hour)
	require.NoError(t, cache.Put(ctx, profile.Profile{UserID: "u1", Vitals: risk.Vitals{PregnancyWeek: risk.Int(30)}}))

	t.Run("ai channel uses model", func(t *testing.T) {
		ans := &stubAnswerer{answer: "Gentle yoga is usually fine."}
		e := newTestEngine(cache).WithAnswerer(ans)

		r, err := e.ProcessMessage(ctx, Request{UserID: "u1", Channel: ChannelAI, Message: "is yoga safe during pregnancy?"})
		require.NoError(t, err)
		assert.Equal(t, KindAnswer, r.Kind)
		assert.Equal(t, "Gentle yoga is usually fine.", r.Content)
		require.NotNil(t, ans.week)
		assert.Equal(t, 30, *ans.week)
	})

	t.Run("doctor channel stays canned", func(t *testing.T) {
		ans := &stubAnswerer{answer: "unused"}
		e := newTestEngine(cache).WithAnswerer(ans)

		r, err := e.ProcessMessage(ctx, Request{UserID: "u1", Channel: ChannelDoctor, Message: "is yoga safe during pregnancy?"})
		require.NoError(t, err)
		assert.Equal(t, KindCanned, r.Kind)
		assert.Zero(t, ans.calls)
	})

	t.Run("model failure falls back", func(t *testing.T) {
		e := newTestEngine(cache).WithAnswerer(&stubAnswerer{err: errors.New("boom")})

		r, err := e.ProcessMessage(ctx, Request{UserID: "u1", Channel: ChannelAI, Message: "is yoga safe during pregnancy?"})
		require.NoError(t, err)
		assert.Equal(t, KindFallback, r.Kind)
		assert.Equal(t, fallback.GetFallbackResponse(classifier.IntentPregnancyQ).Content, r.Content)
	})
}

func TestEngine_ProcessMessage_ReminderSuggestion(t *testing.T) {
	e := newTestEngine(nil)

	r, err := e.ProcessMessage(context.Background(), Request{Channel: ChannelAI, Message: "Please remind me to take my iron tablet at 8pm"})
	require.NoError(t, err)
	require.NotNil(t, r.Reminder)
	assert.Equal(t, reminder.TypeMedication, r.Reminder.Type)
	assert.Equal(t, "Iron", r.Reminder.Name)
	assert.Equal(t, "20:00", r.Reminder.Time)

	r, err = e.ProcessMessage(context.Background(), Request{Channel: ChannelAI, Message: "thank you"})
	require.NoError(t, err)
	assert.Nil(t, r.Reminder)
}

func TestEngine_History(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(nil).WithHistory(memory.NewHistory(10))

	_, err := e.ProcessMessage(ctx, Request{UserID: "u1", Channel: ChannelDoctor, Message: "thank you"})
	require.NoError(t, err)
	_, err = e.ProcessMessage(ctx, Request{UserID: "u1", Channel: ChannelAI, Message: "bp 118/76"})
	require.NoError(t, err)

	doctor := e.History("u1", ChannelDoctor)
	require.Len(t, doctor, 2)
	assert.Equal(t, "user", doctor[0].Role)
	assert.Equal(t, "thank you", doctor[0].Content)
	assert.Equal(t, "doctor", doctor[1].Role)
	assert.Equal(t, KindGratitude, doctor[1].Kind)

	ai := e.History("u1", ChannelAI)
	require.Len(t, ai, 2)
	assert.Equal(t, KindVitals, ai[1].Kind)

	e.ClearHistory("u1", ChannelDoctor)
	assert.Empty(t, e.History("u1", ChannelDoctor))
	assert.Len(t, e.History("u1", ChannelAI), 2)

	assert.Empty(t, newTestEngine(nil).History("u1", ChannelAI))
}

func TestParseChannel(t *testing.T) {
	ch, ok := ParseChannel(" Doctor ")
	assert.True(t, ok)
	assert.Equal(t, ChannelDoctor, ch)

	_, ok = ParseChannel("nurse")
	assert.False(t, ok)
}
