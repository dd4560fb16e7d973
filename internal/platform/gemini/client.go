package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/phrazzld/annotate-api/internal/generation"
)

// Client performs generateContent calls for one generation task.
type Client struct {
	client     *genai.Client
	httpClient *http.Client
	logger     *slog.Logger
}

var _ generation.Completer = (*Client)(nil)

// New creates a Gemini client from the request's API key and optional base
// URL override.
func New(ctx context.Context, req generation.Request, httpClient *http.Client, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if httpClient == nil {
		return nil, fmt.Errorf("%w: http client is required", generation.ErrInvalidConfig)
	}
	if strings.TrimSpace(req.APIKey) == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:     req.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if base := strings.TrimSpace(req.BaseURL); base != "" {
		clientConfig.HTTPOptions.BaseURL = strings.TrimSuffix(base, "/") + "/"
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %w", generation.ErrInvalidConfig, err)
	}

	return &Client{
		client:     client,
		httpClient: httpClient,
		logger:     logger.With("component", "gemini_client"),
	}, nil
}

// Complete implements generation.Completer.
func (c *Client) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	temperature := float32(prompt.Temperature)
	cfg := &genai.GenerateContentConfig{
		Temperature: &temperature,
	}
	if prompt.System != "" {
		cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: prompt.System}}}
	}
	if prompt.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(min(prompt.MaxTokens, math.MaxInt32))
	}

	resp, err := c.client.Models.GenerateContent(ctx, prompt.Model, genai.Text(prompt.User), cfg)
	if err != nil {
		return "", fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: prompt blocked: %s", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("%w: no candidates returned", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return "", fmt.Errorf("%w: candidate stopped by safety filters", generation.ErrContentBlocked)
	}

	c.logger.DebugContext(ctx, "generate content finished",
		"model", prompt.Model,
		"finish_reason", candidate.FinishReason)

	return candidateText(candidate), nil
}

// Close implements generation.Completer. The genai client holds no resources
// of its own beyond the HTTP client.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// candidateText concatenates the text parts of a candidate, skipping thought
// parts.
func candidateText(candidate *genai.Candidate) string {
	if candidate.Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
