package domain

import "strings"

// Label is an entry of the label catalogue. Groups is a slash separated
// path such as "topic/sport/football".
type Label struct {
	ID          int64   `json:"id"`
	Label       string  `json:"label"`
	Description *string `json:"description,omitempty"`
	Groups      *string `json:"groups,omitempty"`
}

// NewLabel creates a Label with a trimmed name. A non-zero id requests an explicit id.
func NewLabel(id int64, name string, description, groups *string) (*Label, error) {
	l := &Label{
		ID:          id,
		Label:       strings.TrimSpace(name),
		Description: description,
		Groups:      groups,
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Validate checks if the Label has valid data.
func (l *Label) Validate() error {
	if l.ID < 0 {
		return NewValidationError("id", "must be positive", ErrInvalidID)
	}
	if l.Label == "" {
		return NewValidationError("label", "cannot be empty", ErrEmptyContent)
	}
	if strings.ContainsAny(l.Label, ",，") {
		return NewValidationError("label", "cannot contain commas", ErrValidation)
	}
	return nil
}
