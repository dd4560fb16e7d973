package generation

import (
	"fmt"
	"time"
)

// Status is the lifecycle state of a generation task.
type Status string

// Task states. Completed, cancelled and error are terminal.
const (
	StatusPending    Status = "pending"
	StatusGenerating Status = "generating"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusError      Status = "error"
)

// IsTerminal reports whether no further transition is allowed from s.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusError:
		return true
	default:
		return false
	}
}

// Supported providers.
const (
	ProviderOpenAI = "openai"
	ProviderOllama = "ollama"
	ProviderGemini = "gemini"
)

// Request describes one generation task: the prompt sent for every item, how
// many items to produce and which provider endpoint to call.
type Request struct {
	SystemPrompt string  `json:"system_prompt" validate:"required"`
	UserPrompt   string  `json:"user_prompt"   validate:"required"`
	Model        string  `json:"model"         validate:"required"`
	Temperature  float64 `json:"temperature"   validate:"gte=0,lte=2"`
	Count        int     `json:"count"         validate:"gte=1"`
	MaxTokens    *int    `json:"max_tokens"    validate:"omitempty,gte=1"`
	ParseRegex   *string `json:"parse_regex"`
	APIKey       string  `json:"api_key"`
	BaseURL      string  `json:"base_url"      validate:"omitempty,url"`
	Provider     string  `json:"provider"      validate:"omitempty,oneof=openai ollama gemini"`
}

// Prompt returns the chat input shared by every completion call of the task.
func (r Request) Prompt() Prompt {
	p := Prompt{
		System:      r.SystemPrompt,
		User:        r.UserPrompt,
		Model:       r.Model,
		Temperature: r.Temperature,
	}
	if r.MaxTokens != nil {
		p.MaxTokens = *r.MaxTokens
	}
	return p
}

// Prompt is the input of a single chat completion call.
type Prompt struct {
	System      string
	User        string
	Model       string
	Temperature float64
	// MaxTokens is omitted from the call when zero.
	MaxTokens int
}

// GeneratedText is one produced item.
type GeneratedText struct {
	Text      string  `json:"text"`
	Labels    *string `json:"labels"`
	RawOutput string  `json:"raw_output"`
}

// Snapshot is a point-in-time copy of a task's progress. It is both the
// status response and the payload of every stream frame.
type Snapshot struct {
	TaskID       string         `json:"task_id"`
	Status       Status         `json:"status"`
	Progress     int            `json:"progress"`
	CurrentCount int            `json:"current_count"`
	TotalCount   int            `json:"total_count"`
	Message      string         `json:"message"`
	Error        *string        `json:"error"`
	LatestText   *GeneratedText `json:"latest_text,omitempty"`
}

// Results lists everything a task produced so far.
type Results struct {
	TaskID         string          `json:"task_id"`
	Status         Status          `json:"status"`
	GeneratedCount int             `json:"generated_count"`
	Texts          []GeneratedText `json:"texts"`
}

// ArchivedTask is the final record of a task kept after it leaves the registry.
type ArchivedTask struct {
	Snapshot   Snapshot  `json:"snapshot"`
	Results    Results   `json:"results"`
	FinishedAt time.Time `json:"finished_at"`
}

func progressMessage(current, total int) string {
	return fmt.Sprintf("Generated %d/%d items", current, total)
}
