package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/annotate-api/internal/generation"
	"github.com/phrazzld/annotate-api/internal/platform/gemini"
	"github.com/phrazzld/annotate-api/internal/platform/ollama"
	"github.com/phrazzld/annotate-api/internal/platform/openai"
)

// Factory implements generation.ClientFactory. Every Open builds a new
// client with its own HTTP transport, so closing it never affects another
// task.
type Factory struct {
	metrics *Metrics
	tokens  TokenCounter
	logger  *slog.Logger
}

var _ generation.ClientFactory = (*Factory)(nil)

// NewFactory creates a factory. metrics and tokens may be nil.
func NewFactory(metrics *Metrics, tokens TokenCounter, logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{
		metrics: metrics,
		tokens:  tokens,
		logger:  logger.With("component", "llm_factory"),
	}
}

// Open implements generation.ClientFactory.
func (f *Factory) Open(ctx context.Context, req generation.Request) (generation.Completer, error) {
	httpClient := newHTTPClient()

	var (
		client generation.Completer
		err    error
	)
	switch req.Provider {
	case generation.ProviderOpenAI, "":
		client, err = openai.New(req, httpClient, f.logger)
	case generation.ProviderOllama:
		client, err = ollama.New(req, httpClient, f.logger)
	case generation.ProviderGemini:
		client, err = gemini.New(ctx, req, httpClient, f.logger)
	default:
		err = fmt.Errorf("%w: %q", generation.ErrUnknownProvider, req.Provider)
	}
	if err != nil {
		httpClient.CloseIdleConnections()
		return nil, err
	}

	provider := req.Provider
	if provider == "" {
		provider = generation.ProviderOpenAI
	}
	f.logger.DebugContext(ctx, "generation client opened", "provider", provider, "model", req.Model)

	return &instrumentedClient{
		next:     client,
		provider: provider,
		metrics:  f.metrics,
		tokens:   f.tokens,
	}, nil
}

// newHTTPClient returns a client with a private transport. Call timeouts come
// from the request context.
func newHTTPClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{Transport: transport}
}

// instrumentedClient records metrics around another Completer.
type instrumentedClient struct {
	next     generation.Completer
	provider string
	metrics  *Metrics
	tokens   TokenCounter
}

func (c *instrumentedClient) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	start := time.Now()
	out, err := c.next.Complete(ctx, prompt)
	c.observe(prompt, out, err, time.Since(start))
	return out, err
}

func (c *instrumentedClient) Close() error {
	return c.next.Close()
}

func (c *instrumentedClient) observe(prompt generation.Prompt, out string, err error, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}

	c.metrics.requests.WithLabelValues(c.provider, prompt.Model, callStatus(err)).Inc()
	c.metrics.duration.WithLabelValues(c.provider, prompt.Model).Observe(elapsed.Seconds())

	if err != nil || c.tokens == nil {
		return
	}
	promptTokens := c.tokens.Count(prompt.Model, prompt.System) + c.tokens.Count(prompt.Model, prompt.User)
	c.metrics.promptTokens.WithLabelValues(c.provider, prompt.Model).Observe(float64(promptTokens))
	c.metrics.completionTokens.WithLabelValues(c.provider, prompt.Model).Observe(float64(c.tokens.Count(prompt.Model, out)))
}

func callStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, generation.ErrContentBlocked):
		return "blocked"
	default:
		return "error"
	}
}
