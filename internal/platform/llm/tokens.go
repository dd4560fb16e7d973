package llm

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"unicode/utf8"

	"github.com/pkoukk/tiktoken-go"
)

// encodingName is the BPE used for every model. Counts feed metrics only, so
// one shared encoding is close enough for non-OpenAI models too.
const encodingName = "cl100k_base"

// ErrEncodingUnavailable is returned by Warm when the encoding could not be loaded.
var ErrEncodingUnavailable = errors.New("token encoding unavailable")

// TokenCounter estimates token counts for metrics.
type TokenCounter interface {
	Count(model, text string) int
}

// TiktokenCounter counts tokens with a BPE encoding loaded once in the
// background by Warm. Count never loads anything itself: until the encoding
// is ready, or when it failed to load, it returns a character based estimate.
type TiktokenCounter struct {
	enc    atomic.Pointer[tiktoken.Tiktoken]
	once   sync.Once
	done   chan struct{}
	load   func(encoding string) (*tiktoken.Tiktoken, error)
	logger *slog.Logger
}

var _ TokenCounter = (*TiktokenCounter)(nil)

// NewTiktokenCounter creates a counter. Call Warm to load the encoding.
func NewTiktokenCounter(logger *slog.Logger) *TiktokenCounter {
	if logger == nil {
		logger = slog.Default()
	}
	return &TiktokenCounter{
		done:   make(chan struct{}),
		load:   tiktoken.GetEncoding,
		logger: logger.With("component", "token_counter"),
	}
}

// Warm starts loading the encoding, which may download the BPE file, and
// waits for it until ctx is done. The load keeps going in the background
// after ctx expires.
func (c *TiktokenCounter) Warm(ctx context.Context) error {
	c.once.Do(func() { go c.loadEncoding() })

	select {
	case <-c.done:
		if c.enc.Load() == nil {
			return ErrEncodingUnavailable
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *TiktokenCounter) loadEncoding() {
	defer close(c.done)

	enc, err := c.load(encodingName)
	if err != nil {
		c.logger.Warn("token encoding unavailable, using estimate",
			"encoding", encodingName,
			"error", err)
		return
	}
	c.enc.Store(enc)
	c.logger.Info("token encoding loaded", "encoding", encodingName)
}

// Count returns the estimated number of tokens in text.
func (c *TiktokenCounter) Count(_ string, text string) int {
	if text == "" {
		return 0
	}
	if enc := c.enc.Load(); enc != nil {
		return len(enc.Encode(text, nil, nil))
	}
	return approxTokens(text)
}

// approxTokens assumes roughly four characters per token.
func approxTokens(text string) int {
	n := utf8.RuneCountInString(text)
	if n == 0 {
		return 0
	}
	return (n + 3) / 4
}
