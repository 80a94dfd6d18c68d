package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/pkg/llm"
)

// Client implements llm.Client over the Gemini generateContent REST API
type Client struct {
	httpClient *resty.Client
	model      string
	logger     *zap.Logger
}

var _ llm.Client = (*Client)(nil)

// Config holds configuration for the Gemini client
type Config struct {
	APIKey     string
	BaseURL    string        // Default: https://generativelanguage.googleapis.com/v1beta
	Model      string        // Default: gemini-2.0-flash
	Timeout    time.Duration // Default: 30s
	RetryCount int
}

type geminiRequest struct {
	SystemInstruction *geminiContent   `json:"systemInstruction,omitempty"`
	Contents          []geminiContent  `json:"contents"`
	GenerationConfig  generationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature,omitempty"`
	MaxOutputTokens  int     `json:"maxOutputTokens,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content      geminiContent `json:"content"`
		FinishReason string        `json:"finishReason"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
		TotalTokenCount      int `json:"totalTokenCount"`
	} `json:"usageMetadata"`
	ModelVersion string `json:"modelVersion"`
}

type apiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// NewClient creates a new Gemini client
func NewClient(config Config, logger *zap.Logger) *Client {
	if config.BaseURL == "" {
		config.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if config.Model == "" {
		config.Model = "gemini-2.0-flash"
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
		SetRetryWaitTime(500*time.Millisecond).
		SetRetryMaxWaitTime(3*time.Second).
		SetHeader("x-goog-api-key", config.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		httpClient: httpClient,
		model:      config.Model,
		logger:     logger,
	}
}

// toGeminiRequest moves system messages into systemInstruction and renames
// the assistant role to model
func toGeminiRequest(req llm.ChatRequest) geminiRequest {
	out := geminiRequest{
		Contents: make([]geminiContent, 0, len(req.Messages)),
		GenerationConfig: generationConfig{
			Temperature:     req.Temperature,
			MaxOutputTokens: req.MaxTokens,
		},
	}

	var system []geminiPart
	for _, msg := range req.Messages {
		switch msg.Role {
		case "system":
			system = append(system, geminiPart{Text: msg.Content})
		case "assistant":
			out.Contents = append(out.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: msg.Content}}})
		default:
			out.Contents = append(out.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: msg.Content}}})
		}
	}
	if len(system) > 0 {
		out.SystemInstruction = &geminiContent{Parts: system}
	}
	if req.ResponseFormat != nil && req.ResponseFormat.Type == llm.JSONObject.Type {
		out.GenerationConfig.ResponseMimeType = "application/json"
	}
	return out
}

// ChatCompletion implements llm.Client.ChatCompletion
func (c *Client) ChatCompletion(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	model := req.Model
	if model == "" {
		model = c.model
	}

	var result geminiResponse
	var failure apiError
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetPathParam("model", model).
		SetBody(toGeminiRequest(req)).
		SetResult(&result).
		SetError(&failure).
		Post("/models/{model}:generateContent")
	if err != nil {
		c.logger.Warn("Gemini request failed", zap.Error(err))
		return nil, fmt.Errorf("failed to call Gemini API: %w", err)
	}

	if resp.IsError() {
		c.logger.Warn("Gemini returned error",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("status", failure.Error.Status),
		)
		msg := failure.Error.Message
		if msg == "" {
			msg = resp.String()
		}
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode(), msg)
	}

	if len(result.Candidates) == 0 {
		return nil, fmt.Errorf("no candidates in Gemini response")
	}

	out := &llm.ChatResponse{
		Object:  "chat.completion",
		Created: time.Now().Unix(),
		Model:   model,
		Usage: llm.Usage{
			PromptTokens:     result.UsageMetadata.PromptTokenCount,
			CompletionTokens: result.UsageMetadata.CandidatesTokenCount,
			TotalTokens:      result.UsageMetadata.TotalTokenCount,
		},
	}
	if result.ModelVersion != "" {
		out.Model = result.ModelVersion
	}
	for i, cand := range result.Candidates {
		var text strings.Builder
		for _, p := range cand.Content.Parts {
			text.WriteString(p.Text)
		}
		out.Choices = append(out.Choices, llm.Choice{
			Index:        i,
			Message:      llm.ChatMessage{Role: "assistant", Content: text.String()},
			FinishReason: strings.ToLower(cand.FinishReason),
		})
	}

	c.logger.Debug("Gemini completion",
		zap.String("model", out.Model),
		zap.Int("total_tokens", out.Usage.TotalTokens),
	)

	return out, nil
}
