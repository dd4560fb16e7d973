package openai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/annotate-api/internal/generation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type chatRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Stream      bool    `json:"stream"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newTestServer(t *testing.T, status int, body string, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := New(generation.Request{APIKey: "test-key", BaseURL: baseURL + "/v1/"}, &http.Client{}, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestClient_Complete(t *testing.T) {
	var seen chatRequest
	srv := newTestServer(t, http.StatusOK, `{
		"id": "chatcmpl-1",
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Late again [delivery]"}}],
		"usage": {"prompt_tokens": 12, "completion_tokens": 5, "total_tokens": 17}
	}`, &seen)
	c := newTestClient(t, srv.URL)

	out, err := c.Complete(context.Background(), generation.Prompt{
		System:      "sys",
		User:        "usr",
		Model:       "gpt-4o-mini",
		Temperature: 0.5,
		MaxTokens:   64,
	})
	require.NoError(t, err)
	assert.Equal(t, "Late again [delivery]", out)

	assert.Equal(t, "gpt-4o-mini", seen.Model)
	assert.InDelta(t, 0.5, seen.Temperature, 1e-6)
	assert.Equal(t, 64, seen.MaxTokens)
	assert.False(t, seen.Stream)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.Equal(t, "sys", seen.Messages[0].Content)
	assert.Equal(t, "user", seen.Messages[1].Role)
	assert.Equal(t, "usr", seen.Messages[1].Content)
}

func TestClient_CompleteEmptyContent(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, `{
		"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": ""}}]
	}`, nil)
	c := newTestClient(t, srv.URL)

	out, err := c.Complete(context.Background(), generation.Prompt{Model: "m"})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestClient_CompleteErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"choices": []}`,
			wantErr: generation.ErrInvalidResponse,
		},
		{
			name:    "content filter finish",
			status:  http.StatusOK,
			body:    `{"choices": [{"index": 0, "finish_reason": "content_filter", "message": {"role": "assistant", "content": ""}}]}`,
			wantErr: generation.ErrContentBlocked,
		},
		{
			name:    "api error",
			status:  http.StatusTooManyRequests,
			body:    `{"error": {"message": "rate limited", "type": "requests", "code": "rate_limit_exceeded"}}`,
			wantErr: generation.ErrGenerationFailed,
		},
		{
			name:    "content filter error",
			status:  http.StatusBadRequest,
			body:    `{"error": {"message": "flagged", "type": "invalid_request_error", "code": "content_filter"}}`,
			wantErr: generation.ErrContentBlocked,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newTestServer(t, tt.status, tt.body, nil)
			c := newTestClient(t, srv.URL)

			_, err := c.Complete(context.Background(), generation.Prompt{Model: "m"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_ZeroTemperatureIsSent(t *testing.T) {
	raw := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		raw <- body
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"choices": [{"index": 0, "message": {"role": "assistant", "content": "x"}}]}`)
	}))
	defer srv.Close()

	c, err := New(generation.Request{BaseURL: srv.URL}, &http.Client{}, testLogger())
	require.NoError(t, err)

	_, err = c.Complete(context.Background(), generation.Prompt{Model: "m", Temperature: 0})
	require.NoError(t, err)

	body := <-raw
	assert.Contains(t, body, "temperature")
	assert.NotContains(t, body, "max_tokens")
}

func TestNew_RequiresHTTPClient(t *testing.T) {
	_, err := New(generation.Request{}, nil, nil)
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
