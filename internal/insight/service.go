package insight

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/internal/circuitbreaker"
	"github.com/themobileprof/momvitals-be/internal/fallback"
	"github.com/themobileprof/momvitals-be/internal/risk"
	"github.com/themobileprof/momvitals-be/pkg/llm"
)

// Source tells callers where a narrative came from
type Source string

const (
	SourceModel    Source = "model"
	SourceFallback Source = "fallback"
	SourceDisabled Source = "disabled"
)

// Result is the outcome of one insight request. Narrative is nil unless
// Source is SourceModel.
type Result struct {
	Narrative *risk.ExternalNarrative `json:"narrative,omitempty"`
	Source    Source                  `json:"source"`
	Notice    *fallback.Response      `json:"notice,omitempty"`
}

// Config holds insight tuning
type Config struct {
	Model        string
	Timeout      time.Duration // Default: 30s
	MaxFailures  int           // Default: 5
	ResetTimeout time.Duration // Default: 5m
	MaxTokens    int           // Default: 400
	Temperature  float64
}

// Service asks a language model for a narrative on top of the rule-based assessment
type Service struct {
	client  llm.Client
	builder *Builder
	parser  *Parser
	breaker *circuitbreaker.CircuitBreaker
	config  Config
	logger  *zap.Logger
}

// NewService creates an insight service. A nil client disables model calls;
// every request then reports SourceDisabled.
func NewService(client llm.Client, cfg Config, logger *zap.Logger) (*Service, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 400
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	parser, err := NewParser()
	if err != nil {
		return nil, err
	}

	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:         "insight",
		MaxFailures:  cfg.MaxFailures,
		ResetTimeout: cfg.ResetTimeout,
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	})

	return &Service{
		client:  client,
		builder: NewBuilder(),
		parser:  parser,
		breaker: breaker,
		config:  cfg,
		logger:  logger,
	}, nil
}

// Enabled reports whether a model client is configured
func (s *Service) Enabled() bool {
	return s.client != nil
}

// BreakerState exposes the circuit state for health reporting
func (s *Service) BreakerState() circuitbreaker.State {
	return s.breaker.State()
}

// Generate requests a narrative. It never returns an error: any failure is
// reported as SourceFallback with a notice for the user.
func (s *Service) Generate(ctx context.Context, req PromptRequest) Result {
	if s.client == nil {
		return Result{Source: SourceDisabled}
	}

	chatReq := llm.ChatRequest{
		Model:          s.config.Model,
		Messages:       s.builder.BuildPrompt(req),
		Temperature:    s.config.Temperature,
		MaxTokens:      s.config.MaxTokens,
		ResponseFormat: llm.JSONObject,
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var narrative *risk.ExternalNarrative
	err := s.breaker.Call(func() error {
		resp, err := s.client.ChatCompletion(ctx, chatReq)
		if err != nil {
			return err
		}
		narrative, err = s.parser.Parse(resp.Content())
		return err
	})

	if err != nil {
		notice := s.noticeFor(err)
		s.logger.Warn("insight request failed, using fallback",
			zap.Error(err),
			zap.String("risk", string(req.Assessment.OverallRisk)),
		)
		n := fallback.ForLevel(notice, req.Assessment.OverallRisk)
		return Result{Source: SourceFallback, Notice: &n}
	}

	s.logger.Debug("insight generated", zap.String("prediction", narrative.Prediction))
	return Result{Narrative: narrative, Source: SourceModel}
}

// ErrDisabled is returned by Answer when no model client is configured
var ErrDisabled = errors.New("insight: model disabled")

// Answer asks the model a free-form question. It shares the circuit breaker
// with Generate.
func (s *Service) Answer(ctx context.Context, question string, week *int) (string, error) {
	if s.client == nil {
		return "", ErrDisabled
	}

	chatReq := llm.ChatRequest{
		Model:       s.config.Model,
		Messages:    s.builder.BuildQuestionPrompt(question, week),
		Temperature: s.config.Temperature,
		MaxTokens:   s.config.MaxTokens,
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	var answer string
	err := s.breaker.Call(func() error {
		resp, err := s.client.ChatCompletion(ctx, chatReq)
		if err != nil {
			return err
		}
		answer = strings.TrimSpace(resp.Content())
		if answer == "" {
			return errors.New("insight: empty answer")
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("answer question: %w", err)
	}
	return answer, nil
}

func (s *Service) noticeFor(err error) fallback.Response {
	switch {
	case errors.Is(err, circuitbreaker.ErrCircuitOpen), errors.Is(err, circuitbreaker.ErrTooManyRequests):
		return fallback.GetCircuitOpenResponse()
	case errors.Is(err, context.DeadlineExceeded):
		return fallback.GetTimeoutResponse()
	case errors.Is(err, ErrInvalidNarrative):
		return fallback.GetInvalidResponse()
	default:
		return fallback.GetUnavailableResponse()
	}
}
