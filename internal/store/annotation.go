package store

import (
	"context"
	"database/sql"

	"github.com/phrazzld/annotate-api/internal/domain"
)

// AnnotationFilter selects annotations. Zero values disable a condition.
type AnnotationFilter struct {
	// Query must be contained in the text.
	Query string
	// ExcludeQuery must not be contained in the text.
	ExcludeQuery string
	// Labels matches annotations carrying any of the labels.
	Labels []string
	// ExcludeLabels rejects annotations carrying any of the labels.
	ExcludeLabels []string
	// UnlabeledOnly restricts the result to annotations without labels.
	UnlabeledOnly bool
}

// Page is a 1-based page request.
type Page struct {
	Number  int
	PerPage int
}

// Offset returns the number of rows skipped before the page.
func (p Page) Offset() int {
	if p.Number < 1 {
		return 0
	}
	return (p.Number - 1) * p.PerPage
}

// AnnotationStore defines the interface for annotation persistence.
type AnnotationStore interface {
	// Create inserts the annotation and sets its ID.
	// Returns ErrAnnotationExists if the text is already stored.
	Create(ctx context.Context, a *domain.Annotation) error

	// GetByID returns ErrAnnotationNotFound if the annotation does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Annotation, error)

	// GetByText returns ErrAnnotationNotFound if no annotation has exactly this text.
	GetByText(ctx context.Context, text string) (*domain.Annotation, error)

	// UpdateLabels replaces the labels of an annotation.
	// Returns ErrAnnotationNotFound if the annotation does not exist.
	UpdateLabels(ctx context.Context, id int64, labels string) error

	// Delete returns ErrAnnotationNotFound if the annotation does not exist.
	Delete(ctx context.Context, id int64) error

	// Search returns one page of matching annotations ordered by id, and the total match count.
	Search(ctx context.Context, filter AnnotationFilter, page Page) ([]*domain.Annotation, int, error)

	// FindIDs returns the ids of every annotation matching the filter.
	FindIDs(ctx context.Context, filter AnnotationFilter) ([]int64, error)

	// GetByIDs returns the annotations that exist among ids, ordered by id.
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.Annotation, error)

	// InsertIgnoringDuplicates inserts texts with the given labels and skips texts
	// that already exist. Returns the number of rows inserted.
	InsertIgnoringDuplicates(ctx context.Context, items []*domain.Annotation) (int, error)

	// WithTx returns a new AnnotationStore instance that uses the provided transaction.
	WithTx(tx *sql.Tx) AnnotationStore
}
