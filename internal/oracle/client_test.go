package oracle

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/contentd/internal/config"
)

func testOracleConfig(provider, baseURL string) config.OracleConfig {
	return config.OracleConfig{
		Provider:   provider,
		APIKey:     config.Secret("test-key"),
		BaseURL:    baseURL,
		Timeout:    config.Duration(5 * time.Second),
		RateLimit:  100,
		Burst:      100,
		MaxRetries: 1,
	}
}

func TestNewClient(t *testing.T) {
	t.Run("anthropic", func(t *testing.T) {
		c, err := NewClient(testOracleConfig("anthropic", ""))
		require.NoError(t, err)
		assert.IsType(t, &anthropicClient{}, c)
	})

	t.Run("openai", func(t *testing.T) {
		c, err := NewClient(testOracleConfig("openai", ""))
		require.NoError(t, err)
		assert.IsType(t, &openAIClient{}, c)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewClient(testOracleConfig("cohere", ""))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown oracle provider")
	})

	t.Run("missing API key", func(t *testing.T) {
		cfg := testOracleConfig("anthropic", "")
		cfg.APIKey = ""
		_, err := NewClient(cfg)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "API key required")
	})
}

func TestAnthropicComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("X-API-Key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("Anthropic-Version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "system text", req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "hello"}], "stop_reason": "end_turn"}`))
	}))
	defer server.Close()

	c, err := NewClient(testOracleConfig("anthropic", server.URL))
	require.NoError(t, err)

	got, err := c.Complete(context.Background(), "system text", "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "hello", got)
}

func TestAnthropicCompleteNonRetryableError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"type": "invalid_request_error", "message": "bad model"}}`))
	}))
	defer server.Close()

	c, err := NewClient(testOracleConfig("anthropic", server.URL))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad model")
	assert.Equal(t, 1, calls, "client errors must not be retried")
}

func TestAnthropicCompleteRetriesServerError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"content": [{"type": "text", "text": "recovered"}]}`))
	}))
	defer server.Close()

	c, err := NewClient(testOracleConfig("anthropic", server.URL))
	require.NoError(t, err)

	got, err := c.Complete(context.Background(), "", "prompt")
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
	assert.Equal(t, 2, calls)
}

func TestOpenAIComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openAIRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "user", req.Messages[1].Role)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": [{"message": {"content": "hi"}, "finish_reason": "stop"}]}`))
	}))
	defer server.Close()

	c, err := NewClient(testOracleConfig("openai", server.URL))
	require.NoError(t, err)

	got, err := c.Complete(context.Background(), "system text", "prompt text")
	require.NoError(t, err)
	assert.Equal(t, "hi", got)
}

func TestOpenAICompleteEmptyChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer server.Close()

	c, err := NewClient(testOracleConfig("openai", server.URL))
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty response")
}
