package openrouter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"voice-browser/internal/domain/entity"
	"voice-browser/internal/infrastructure/logger"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func completionServer(t *testing.T, content string, captured *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: "assistant", Content: content}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestConvertResponseMessage_WithContent(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Role:    "assistant",
		Content: "Hello, world!",
	}

	result := convertResponseMessage(msg)

	assert.Equal(t, entity.RoleAssistant, result.Role)
	assert.Equal(t, "Hello, world!", result.Content)
}

func TestConvertMessages(t *testing.T) {
	messages := []entity.Message{
		{Role: entity.RoleSystem, Content: "Be brief"},
		{Role: entity.RoleUser, Content: "Hello"},
	}

	result := convertMessages(messages)

	assert.Len(t, result, 2)
	assert.Equal(t, "system", result[0].Role)
	assert.Equal(t, "user", result[1].Role)
	assert.Equal(t, "Hello", result[1].Content)
}

func TestGenerate_TrimsReply(t *testing.T) {
	var captured openai.ChatCompletionRequest
	server := completionServer(t, "  NAVIGATION \n", &captured)

	cfg := DefaultConfig("test-key", "test-model")
	cfg.BaseURL = server.URL
	cfg.Logger = logger.NewNoOpLogger()
	adapter := NewOpenRouterAdapter(cfg)

	text, err := adapter.Generate(context.Background(), "classify this")
	require.NoError(t, err)

	assert.Equal(t, "NAVIGATION", text)
	assert.Equal(t, "test-model", captured.Model)
	require.Len(t, captured.Messages, 1)
	assert.Equal(t, "classify this", captured.Messages[0].Content)
}

func TestGenerate_EmptyReply(t *testing.T) {
	server := completionServer(t, "   ", nil)

	cfg := DefaultConfig("test-key", "test-model")
	cfg.BaseURL = server.URL
	adapter := NewOpenRouterAdapter(cfg)

	_, err := adapter.Generate(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrEmptyCompletion)
}

func TestGenerate_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom"}}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := DefaultConfig("test-key", "test-model")
	cfg.BaseURL = server.URL
	adapter := NewOpenRouterAdapter(cfg)

	_, err := adapter.Generate(context.Background(), "anything")
	assert.Error(t, err)
}

func TestGenerate_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer server.Close()

	cfg := DefaultConfig("test-key", "test-model")
	cfg.BaseURL = server.URL
	cfg.Timeout = 50 * time.Millisecond
	adapter := NewOpenRouterAdapter(cfg)

	start := time.Now()
	_, err := adapter.Generate(context.Background(), "anything")
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}
