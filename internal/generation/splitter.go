package generation

import (
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Label precedence policies for the default split.
const (
	PrecedenceBracketFirst = "bracket_first"
	PrecedencePrefixFirst  = "prefix_first"
)

// LabelRule extracts labels from model output. The first capture group of
// Pattern holds the labels; every match of Pattern is removed from the body.
type LabelRule struct {
	Name    string
	Pattern *regexp.Regexp
}

var bracketRule = LabelRule{Name: "bracket", Pattern: regexp.MustCompile(`\[([^\]]+)\]`)}

var prefixRules = []LabelRule{
	{Name: "prefix_标签", Pattern: regexp.MustCompile(`标签[:：]\s*([^\n]+)`)},
	{Name: "prefix_分类", Pattern: regexp.MustCompile(`分类[:：]\s*([^\n]+)`)},
	{Name: "prefix_类别", Pattern: regexp.MustCompile(`类别[:：]\s*([^\n]+)`)},
	{Name: "prefix_labels", Pattern: regexp.MustCompile(`(?i)\blabels?[:：]\s*([^\n]+)`)},
	{Name: "prefix_category", Pattern: regexp.MustCompile(`(?i)\bcategory[:：]\s*([^\n]+)`)},
	{Name: "prefix_tags", Pattern: regexp.MustCompile(`(?i)\btags[:：]\s*([^\n]+)`)},
}

// Splitter separates generated text from its labels.
type Splitter struct {
	rules  []LabelRule
	logger *slog.Logger
}

// NewSplitter builds a splitter whose default policy applies the built-in
// rules in the given precedence. An empty precedence means bracket_first.
func NewSplitter(precedence string, logger *slog.Logger) (*Splitter, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var rules []LabelRule
	switch precedence {
	case "", PrecedenceBracketFirst:
		rules = append([]LabelRule{bracketRule}, prefixRules...)
	case PrecedencePrefixFirst:
		rules = append(append([]LabelRule{}, prefixRules...), bracketRule)
	default:
		return nil, fmt.Errorf("%w: unknown label precedence %q", ErrInvalidConfig, precedence)
	}

	return &Splitter{rules: rules, logger: logger.With("component", "splitter")}, nil
}

// Rules returns the default policy in evaluation order.
func (s *Splitter) Rules() []LabelRule {
	return append([]LabelRule(nil), s.rules...)
}

// Compile prepares a caller-supplied pattern with dot-all and multi-line
// flags. It returns nil for an empty or invalid pattern; invalid ones are
// logged and the default policy applies.
func (s *Splitter) Compile(pattern string) *regexp.Regexp {
	if pattern == "" {
		return nil
	}
	re, err := regexp.Compile("(?s)(?m)" + pattern)
	if err != nil {
		s.logger.Warn("invalid parse pattern, using default label rules",
			"pattern", pattern,
			"error", err)
		return nil
	}
	return re
}

// Split parses raw with pattern (may be empty) and falls back to the default
// policy. It never fails.
func (s *Splitter) Split(raw, pattern string) (string, *string) {
	return s.SplitWith(raw, s.Compile(pattern))
}

// SplitWith is Split with an already compiled custom pattern, which may be nil.
func (s *Splitter) SplitWith(raw string, custom *regexp.Regexp) (string, *string) {
	if custom != nil {
		if m := custom.FindStringSubmatch(raw); len(m) > 1 {
			text := strings.TrimSpace(m[1])
			if len(m) > 2 {
				return text, nonEmpty(m[2])
			}
			return text, nil
		}
	}

	for _, rule := range s.rules {
		m := rule.Pattern.FindStringSubmatch(raw)
		if m == nil {
			continue
		}
		body := strings.TrimSpace(rule.Pattern.ReplaceAllString(raw, ""))
		return body, nonEmpty(m[1])
	}

	return strings.TrimSpace(raw), nil
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
