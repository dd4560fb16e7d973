package domain

import (
	"strings"
	"time"
)

// Annotation is a unique text snippet together with its labels.
// Labels are stored in normalized comma-separated form; an empty string
// means the text is unlabeled.
type Annotation struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	Labels    string    `json:"labels"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewAnnotation creates an Annotation with trimmed text and normalized labels.
// Returns an error if validation fails.
func NewAnnotation(text, labels string) (*Annotation, error) {
	now := time.Now().UTC()
	a := &Annotation{
		Text:      strings.TrimSpace(text),
		Labels:    NormalizeLabels(labels),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks if the Annotation has valid data.
func (a *Annotation) Validate() error {
	if strings.TrimSpace(a.Text) == "" {
		return NewValidationError("text", "cannot be empty", ErrEmptyContent)
	}
	return nil
}

// SetLabels replaces the labels and bumps UpdatedAt.
func (a *Annotation) SetLabels(labels string) {
	a.Labels = NormalizeLabels(labels)
	a.UpdatedAt = time.Now().UTC()
}

// IsLabeled reports whether the annotation carries at least one label.
func (a *Annotation) IsLabeled() bool {
	return len(SplitLabels(a.Labels)) > 0
}
