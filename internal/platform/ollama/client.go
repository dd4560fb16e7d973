// Package ollama implements generation.Completer with the native Ollama
// chat API.
package ollama

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"

	"github.com/phrazzld/annotate-api/internal/generation"
)

// DefaultBaseURL is used when the request names no endpoint.
const DefaultBaseURL = "http://localhost:11434"

// Client performs chat calls for one generation task.
type Client struct {
	api        *api.Client
	httpClient *http.Client
	logger     *slog.Logger
}

var _ generation.Completer = (*Client)(nil)

// New creates a client for req's base URL. The native API lives at the
// server root, so an OpenAI-style "/v1" suffix is stripped.
func New(req generation.Request, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("%w: http client is required", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	base := strings.TrimSpace(req.BaseURL)
	if base == "" {
		base = DefaultBaseURL
	}
	base = strings.TrimSuffix(base, "/")
	base = strings.TrimSuffix(base, "/v1")

	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid ollama base url: %w", generation.ErrInvalidConfig, err)
	}

	return &Client{
		api:        api.NewClient(u, httpClient),
		httpClient: httpClient,
		logger:     logger.With("component", "ollama_client"),
	}, nil
}

// Complete implements generation.Completer.
func (c *Client) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	stream := false
	options := map[string]any{
		"temperature": prompt.Temperature,
	}
	if prompt.MaxTokens > 0 {
		options["num_predict"] = prompt.MaxTokens
	}

	req := &api.ChatRequest{
		Model: prompt.Model,
		Messages: []api.Message{
			{Role: "system", Content: prompt.System},
			{Role: "user", Content: prompt.User},
		},
		Stream:  &stream,
		Options: options,
	}

	var resp api.ChatResponse
	err := c.api.Chat(ctx, req, func(r api.ChatResponse) error {
		resp = r
		return nil
	})
	if err != nil {
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			return "", fmt.Errorf("%w: status %d: %s", generation.ErrGenerationFailed, statusErr.StatusCode, statusErr.ErrorMessage)
		}
		return "", fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
	}

	c.logger.DebugContext(ctx, "chat completion finished",
		"model", resp.Model,
		"done_reason", resp.DoneReason,
		"prompt_tokens", resp.PromptEvalCount,
		"completion_tokens", resp.EvalCount)

	return resp.Message.Content, nil
}

// Close implements generation.Completer.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
