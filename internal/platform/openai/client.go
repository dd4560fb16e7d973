// Package openai implements generation.Completer on top of any
// OpenAI-compatible chat completions endpoint (OpenAI, DeepSeek, vLLM,
// Ollama's /v1 shim and similar).
package openai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	openaigo "github.com/sashabaranov/go-openai"

	"github.com/phrazzld/annotate-api/internal/generation"
)

// Client performs chat completion calls for one generation task.
type Client struct {
	api        *openaigo.Client
	httpClient *http.Client
	logger     *slog.Logger
}

var _ generation.Completer = (*Client)(nil)

// New creates a client for the endpoint and credentials in req. An empty
// base URL means the public OpenAI API. httpClient is owned by the returned
// client and its idle connections are dropped on Close.
func New(req generation.Request, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if httpClient == nil {
		return nil, fmt.Errorf("%w: http client is required", generation.ErrInvalidConfig)
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := openaigo.DefaultConfig(req.APIKey)
	if base := strings.TrimSpace(req.BaseURL); base != "" {
		cfg.BaseURL = strings.TrimSuffix(base, "/")
	}
	cfg.HTTPClient = httpClient

	return &Client{
		api:        openaigo.NewClientWithConfig(cfg),
		httpClient: httpClient,
		logger:     logger.With("component", "openai_client"),
	}, nil
}

// Complete implements generation.Completer.
func (c *Client) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	req := openaigo.ChatCompletionRequest{
		Model: prompt.Model,
		Messages: []openaigo.ChatCompletionMessage{
			{Role: openaigo.ChatMessageRoleSystem, Content: prompt.System},
			{Role: openaigo.ChatMessageRoleUser, Content: prompt.User},
		},
		Temperature: temperature(prompt.Temperature),
		MaxTokens:   prompt.MaxTokens,
		Stream:      false,
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", mapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", generation.ErrInvalidResponse)
	}

	choice := resp.Choices[0]
	if choice.FinishReason == openaigo.FinishReasonContentFilter {
		return "", generation.ErrContentBlocked
	}

	c.logger.DebugContext(ctx, "chat completion finished",
		"model", resp.Model,
		"finish_reason", choice.FinishReason,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens)

	return choice.Message.Content, nil
}

// Close implements generation.Completer.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// temperature keeps an explicit zero on the wire; go-openai drops a plain
// zero because the field is omitempty.
func temperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

func mapError(err error) error {
	var apiErr *openaigo.APIError
	if errors.As(err, &apiErr) {
		if code, ok := apiErr.Code.(string); ok && code == "content_filter" {
			return fmt.Errorf("%w: %s", generation.ErrContentBlocked, apiErr.Message)
		}
		return fmt.Errorf("%w: status %d: %s", generation.ErrGenerationFailed, apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openaigo.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("%w: status %d: %w", generation.ErrGenerationFailed, reqErr.HTTPStatusCode, reqErr.Err)
	}
	return fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
}
