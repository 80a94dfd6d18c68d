package insight

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/internal/circuitbreaker"
	"github.com/themobileprof/momvitals-be/internal/fallback"
	"github.com/themobileprof/momvitals-be/internal/risk"
	"github.com/themobileprof/momvitals-be/pkg/llm"
)

func sampleRequest() PromptRequest {
	v := risk.Vitals{
		BloodSugarMgDl: risk.Float(150),
		SystolicMmHg:   risk.Float(122),
		DiastolicMmHg:  risk.Float(80),
		PregnancyWeek:  risk.Int(26),
		SymptomsText:   "thirsty all the time, call me on 555-123-4567",
	}
	return PromptRequest{Vitals: v, Assessment: risk.NewEngine().Assess(v)}
}

func newService(t *testing.T, client llm.Client, cfg Config) *Service {
	t.Helper()
	svc, err := NewService(client, cfg, zap.NewNop())
	require.NoError(t, err)
	return svc
}

func TestService_Generate_Success(t *testing.T) {
	mock := llm.NewMockClient()
	mock.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		return llm.NewMockResponse(`{"prediction":"Possible gestational diabetes","steps":["Glucose tolerance test"," ","Cut sugary drinks"],"specialist":"Endocrinologist"}`), nil
	}
	svc := newService(t, mock, Config{Model: "deepseek-chat"})

	res := svc.Generate(context.Background(), sampleRequest())

	require.Equal(t, SourceModel, res.Source)
	require.NotNil(t, res.Narrative)
	assert.Nil(t, res.Notice)
	assert.Equal(t, "Possible gestational diabetes", res.Narrative.Prediction)
	assert.Equal(t, []string{"Glucose tolerance test", "Cut sugary drinks"}, res.Narrative.Steps)
	assert.Equal(t, "Endocrinologist", res.Narrative.Specialist)

	require.Len(t, mock.ChatCalls, 1)
	call := mock.ChatCalls[0]
	assert.Equal(t, "deepseek-chat", call.Model)
	assert.Equal(t, llm.JSONObject, call.ResponseFormat)
	require.Len(t, call.Messages, 2)
	assert.Contains(t, call.Messages[1].Content, "Sugar: 150 mg/dL")
	assert.Contains(t, call.Messages[1].Content, "[PHONE]")
	assert.NotContains(t, call.Messages[1].Content, "555-123-4567")
}

func TestService_Generate_Fallbacks(t *testing.T) {
	tests := []struct {
		name       string
		reply      string
		err        error
		wantNotice fallback.Response
	}{
		{name: "invalid json", reply: "I think you are fine", wantNotice: fallback.GetInvalidResponse()},
		{name: "schema violation", reply: `{"prediction":"x","steps":"not a list"}`, wantNotice: fallback.GetInvalidResponse()},
		{name: "missing prediction", reply: `{"steps":["a"]}`, wantNotice: fallback.GetInvalidResponse()},
		{name: "provider error", err: errors.New("API returned status 500"), wantNotice: fallback.GetUnavailableResponse()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := llm.NewMockClient()
			mock.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return llm.NewMockResponse(tt.reply), nil
			}
			svc := newService(t, mock, Config{})

			res := svc.Generate(context.Background(), sampleRequest())

			assert.Equal(t, SourceFallback, res.Source)
			assert.Nil(t, res.Narrative)
			require.NotNil(t, res.Notice)
			assert.Equal(t, tt.wantNotice, *res.Notice)
		})
	}
}

func TestService_Generate_Timeout(t *testing.T) {
	mock := llm.NewMockClient()
	mock.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	svc := newService(t, mock, Config{Timeout: 20 * time.Millisecond})

	start := time.Now()
	res := svc.Generate(context.Background(), sampleRequest())

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, SourceFallback, res.Source)
	require.NotNil(t, res.Notice)
	assert.Equal(t, fallback.GetTimeoutResponse(), *res.Notice)
}

func TestService_Generate_CircuitOpens(t *testing.T) {
	mock := llm.NewMockClient()
	mock.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		return nil, errors.New("connection refused")
	}
	svc := newService(t, mock, Config{MaxFailures: 3, ResetTimeout: time.Hour})

	for i := 0; i < 3; i++ {
		svc.Generate(context.Background(), sampleRequest())
	}
	require.Equal(t, circuitbreaker.StateOpen, svc.BreakerState())

	res := svc.Generate(context.Background(), sampleRequest())

	assert.Equal(t, 3, mock.GetChatCallCount(), "open circuit must not reach the provider")
	require.NotNil(t, res.Notice)
	assert.Equal(t, fallback.GetCircuitOpenResponse(), *res.Notice)
}

func TestService_Generate_CriticalNoticeEscalates(t *testing.T) {
	mock := llm.NewMockClient()
	mock.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
		return llm.NewMockResponse("not json"), nil
	}
	svc := newService(t, mock, Config{})

	v := risk.Vitals{BloodSugarMgDl: risk.Float(50)}
	res := svc.Generate(context.Background(), PromptRequest{Vitals: v, Assessment: risk.NewEngine().Assess(v)})

	require.NotNil(t, res.Notice)
	assert.Equal(t, "emergency", res.Notice.Action)
}

func TestService_Disabled(t *testing.T) {
	svc := newService(t, nil, Config{})

	assert.False(t, svc.Enabled())
	res := svc.Generate(context.Background(), sampleRequest())
	assert.Equal(t, SourceDisabled, res.Source)
	assert.Nil(t, res.Narrative)
	assert.Nil(t, res.Notice)
}

func TestParser_Parse(t *testing.T) {
	p, err := NewParser()
	require.NoError(t, err)

	n, err := p.Parse("```json\n{\"prediction\":\"Preeclampsia watch\",\"steps\":[\"Rest\"],\"specialist\":\"N/A\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Preeclampsia watch", n.Prediction)
	assert.Empty(t, n.Specialist, "N/A is treated as no specialist")

	long := `{"prediction":"p","steps":["1","2","3","4","5","6","7"]}`
	n, err = p.Parse(long)
	require.NoError(t, err)
	assert.Len(t, n.Steps, maxSteps)

	_, err = p.Parse("   ")
	assert.True(t, errors.Is(err, ErrInvalidNarrative))
}

func TestBuilder_BuildPrompt(t *testing.T) {
	b := NewBuilder()
	messages := b.BuildPrompt(PromptRequest{
		Vitals:     risk.Vitals{SystolicMmHg: risk.Float(135), DiastolicMmHg: risk.Float(92)},
		Assessment: risk.Assessment{OverallRisk: risk.LevelHigh},
	})

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].Role)
	assert.Contains(t, messages[0].Content, `"prediction"`)

	user := messages[1].Content
	assert.Equal(t, "user", messages[1].Role)
	assert.Contains(t, user, "BP: 135/92 mmHg")
	assert.Contains(t, user, "Sugar: - mg/dL")
	assert.Contains(t, user, "Age: unknown")
	assert.Contains(t, user, "Symptoms: None reported")
	assert.True(t, strings.HasSuffix(user, "Rule-based risk: HIGH."))
}

func TestService_Answer(t *testing.T) {
	t.Run("answers", func(t *testing.T) {
		mock := llm.NewMockClient()
		mock.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
			return llm.NewMockResponse("  Yes, walking is safe for most pregnancies.  "), nil
		}
		svc := newService(t, mock, Config{})

		got, err := svc.Answer(context.Background(), "Is walking safe? email me at a@b.com", risk.Int(20))
		require.NoError(t, err)
		assert.Equal(t, "Yes, walking is safe for most pregnancies.", got)

		require.Len(t, mock.ChatCalls, 1)
		call := mock.ChatCalls[0]
		assert.Nil(t, call.ResponseFormat)
		assert.Contains(t, call.Messages[1].Content, "Pregnancy week 20")
		assert.NotContains(t, call.Messages[1].Content, "a@b.com")
	})

	t.Run("empty answer fails", func(t *testing.T) {
		mock := llm.NewMockClient()
		mock.ChatFunc = func(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
			return llm.NewMockResponse("   "), nil
		}
		svc := newService(t, mock, Config{})

		_, err := svc.Answer(context.Background(), "Is yoga ok?", nil)
		assert.Error(t, err)
	})

	t.Run("disabled", func(t *testing.T) {
		svc := newService(t, nil, Config{})
		_, err := svc.Answer(context.Background(), "Is yoga ok?", nil)
		assert.ErrorIs(t, err, ErrDisabled)
	})
}
