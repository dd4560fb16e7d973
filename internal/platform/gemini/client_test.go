package gemini

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/annotate-api/internal/generation"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), generation.Request{APIKey: "test-key", BaseURL: srv.URL}, &http.Client{}, testLogger())
	require.NoError(t, err)
	return c
}

func TestClient_Complete(t *testing.T) {
	var seen map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/models/gemini-2.0-flash:generateContent"), r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&seen))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"candidates": [{
				"content": {"role": "model", "parts": [{"text": "Refund still missing "}, {"text": "[refund]"}]},
				"finishReason": "STOP"
			}]
		}`)
	})

	out, err := c.Complete(context.Background(), generation.Prompt{
		System:      "sys",
		User:        "usr",
		Model:       "gemini-2.0-flash",
		Temperature: 0.4,
		MaxTokens:   32,
	})
	require.NoError(t, err)
	assert.Equal(t, "Refund still missing [refund]", out)

	body, err := json.Marshal(seen)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"usr"`)
	assert.Contains(t, string(body), `"sys"`)
	assert.Contains(t, string(body), "systemInstruction")
}

func TestClient_CompleteBlocked(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{
			name:    "prompt blocked",
			body:    `{"promptFeedback": {"blockReason": "SAFETY"}}`,
			wantErr: generation.ErrContentBlocked,
		},
		{
			name:    "candidate stopped for safety",
			body:    `{"candidates": [{"finishReason": "SAFETY"}]}`,
			wantErr: generation.ErrContentBlocked,
		},
		{
			name:    "no candidates",
			body:    `{"candidates": []}`,
			wantErr: generation.ErrInvalidResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = io.WriteString(w, tt.body)
			})

			_, err := c.Complete(context.Background(), generation.Prompt{Model: "gemini-2.0-flash", User: "u"})
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_CompleteHTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error": {"code": 400, "message": "API key not valid", "status": "INVALID_ARGUMENT"}}`)
	})

	_, err := c.Complete(context.Background(), generation.Prompt{Model: "gemini-2.0-flash", User: "u"})
	assert.ErrorIs(t, err, generation.ErrGenerationFailed)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(context.Background(), generation.Request{}, &http.Client{}, testLogger())
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)

	_, err = New(context.Background(), generation.Request{APIKey: "k"}, nil, testLogger())
	assert.ErrorIs(t, err, generation.ErrInvalidConfig)
}
