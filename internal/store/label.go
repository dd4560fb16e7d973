package store

import (
	"context"

	"github.com/phrazzld/annotate-api/internal/domain"
)

// LabelStore defines the interface for the label catalogue.
type LabelStore interface {
	// Create inserts the label. A zero ID lets the database assign one.
	// Returns ErrLabelExists if the name or the explicit id is taken.
	Create(ctx context.Context, l *domain.Label) error

	// List returns every label ordered by id.
	List(ctx context.Context) ([]*domain.Label, error)

	// GetByID returns ErrLabelNotFound if the label does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Label, error)

	// Update saves name, description and groups.
	// Returns ErrLabelNotFound or ErrLabelExists.
	Update(ctx context.Context, l *domain.Label) error

	// Delete returns ErrLabelNotFound if the label does not exist.
	Delete(ctx context.Context, id int64) error
}
