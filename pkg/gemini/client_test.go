package gemini

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/themobileprof/momvitals-be/pkg/llm"
)

func TestClient_ChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash:generateContent", r.URL.Path)
		assert.Equal(t, "gm-test", r.Header.Get("x-goog-api-key"))

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.SystemInstruction)
		assert.Equal(t, "You are a clinical assistant", req.SystemInstruction.Parts[0].Text)
		require.Len(t, req.Contents, 2)
		assert.Equal(t, "user", req.Contents[0].Role)
		assert.Equal(t, "model", req.Contents[1].Role)
		assert.Equal(t, "application/json", req.GenerationConfig.ResponseMimeType)
		assert.Equal(t, 512, req.GenerationConfig.MaxOutputTokens)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"prediction\":"},{"text":"\"Stable\"}"}]},"finishReason":"STOP"}],"usageMetadata":{"promptTokenCount":30,"candidatesTokenCount":12,"totalTokenCount":42},"modelVersion":"gemini-2.0-flash-001"}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "gm-test", BaseURL: server.URL}, zap.NewNop())

	resp, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.ChatMessage{
			{Role: "system", Content: "You are a clinical assistant"},
			{Role: "user", Content: "Sugar 100"},
			{Role: "assistant", Content: "Noted"},
		},
		MaxTokens:      512,
		ResponseFormat: llm.JSONObject,
	})

	require.NoError(t, err)
	assert.Equal(t, `{"prediction":"Stable"}`, resp.Content())
	assert.Equal(t, "stop", resp.Choices[0].FinishReason)
	assert.Equal(t, "gemini-2.0-flash-001", resp.Model)
	assert.Equal(t, 42, resp.Usage.TotalTokens)
	assert.Equal(t, 30, resp.Usage.PromptTokens)
}

func TestClient_ChatCompletion_PlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-1.5-pro:generateContent", r.URL.Path)

		var req geminiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Nil(t, req.SystemInstruction)
		assert.Empty(t, req.GenerationConfig.ResponseMimeType)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Yes, gentle yoga is usually safe."}]},"finishReason":"STOP"}]}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "gm-test", BaseURL: server.URL, Model: "gemini-1.5-pro"}, nil)

	resp, err := client.ChatCompletion(context.Background(), llm.ChatRequest{
		Messages: []llm.ChatMessage{{Role: "user", Content: "Is yoga safe?"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Yes, gentle yoga is usually safe.", resp.Content())
	assert.Equal(t, "gemini-1.5-pro", resp.Model)
}

func TestClient_ChatCompletion_Errors(t *testing.T) {
	t.Run("api error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":{"code":400,"message":"API key not valid","status":"INVALID_ARGUMENT"}}`))
		}))
		defer server.Close()

		client := NewClient(Config{APIKey: "bad", BaseURL: server.URL}, nil)
		_, err := client.ChatCompletion(context.Background(), llm.ChatRequest{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "400")
		assert.Contains(t, err.Error(), "API key not valid")
	})

	t.Run("no candidates", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"candidates":[]}`))
		}))
		defer server.Close()

		client := NewClient(Config{APIKey: "gm", BaseURL: server.URL}, nil)
		_, err := client.ChatCompletion(context.Background(), llm.ChatRequest{})
		assert.Error(t, err)
	})
}
