package openai

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/pkg/llm"
)

// Client talks to the OpenAI chat completions API, or any compatible endpoint
type Client struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

var _ llm.Client = (*Client)(nil)

// Config holds configuration for the OpenAI client
type Config struct {
	APIKey     string
	BaseURL    string        // Default: https://api.openai.com/v1
	Model      string        // Default: gpt-4o
	Timeout    time.Duration // Default: 30s
	RetryCount int
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// NewClient creates a new OpenAI client
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://api.openai.com/v1"
	}
	if config.Model == "" {
		config.Model = "gpt-4o"
	}
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetRetryCount(config.RetryCount).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetAuthToken(config.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		model:      config.Model,
		logger:     logger,
	}
}

// ChatCompletion implements llm.Client.ChatCompletion
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	if req.Model == "" {
		req.Model = c.model
	}

	var result llm.ChatResponse
	var failure apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&result).
		SetError(&failure).
		Post("/chat/completions")
	if err != nil {
		c.logger.Warn("OpenAI request failed", zap.Error(err))
		return nil, fmt.Errorf("failed to call OpenAI API: %w", err)
	}

	if resp.IsError() {
		c.logger.Warn("OpenAI returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("type", failure.Error.Type),
		)
		msg := failure.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode(), msg)
	}

	c.logger.Debug("OpenAI completion",
		zap.String("model", result.Model),
		zap.Int("total_tokens", result.Usage.TotalTokens),
	)

	return &result, nil
}
