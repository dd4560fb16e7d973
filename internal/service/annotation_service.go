package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/annotate-api/internal/config"
	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/platform/logger"
	"github.com/phrazzld/annotate-api/internal/store"
)

// SearchParams describes one page of an annotation search.
type SearchParams struct {
	Filter  store.AnnotationFilter
	Page    int
	PerPage int
}

// SearchResult is one page of matching annotations.
type SearchResult struct {
	Items   []*domain.Annotation `json:"items"`
	Total   int                  `json:"total"`
	Page    int                  `json:"page"`
	PerPage int                  `json:"per_page"`
}

// BulkUpdateParams selects annotations either by id or by search criteria
// and adds and/or removes labels on each of them.
type BulkUpdateParams struct {
	IDs      []int64
	Criteria *store.AnnotationFilter
	Add      string
	Remove   string
}

// BulkUpdateResult reports how many annotations actually changed.
type BulkUpdateResult struct {
	UpdatedCount int    `json:"updated_count"`
	Message      string `json:"message"`
}

// LabeledText is a text to import together with its labels.
type LabeledText struct {
	Text   string
	Labels string
}

// AnnotationService provides annotation use cases on top of an AnnotationStore.
type AnnotationService struct {
	repo       store.AnnotationStore
	db         store.TxBeginner
	pagination config.PaginationConfig
	logger     *slog.Logger
}

// NewAnnotationService creates a new AnnotationService.
// It returns an error if any of the required dependencies are nil.
func NewAnnotationService(
	repo store.AnnotationStore,
	db store.TxBeginner,
	pagination config.PaginationConfig,
	logger *slog.Logger,
) (*AnnotationService, error) {
	if repo == nil {
		return nil, &ServiceError{Service: "annotation", Operation: "create_service", Message: "repo cannot be nil"}
	}
	if db == nil {
		return nil, &ServiceError{Service: "annotation", Operation: "create_service", Message: "db cannot be nil"}
	}
	if pagination.DefaultPageSize <= 0 {
		pagination.DefaultPageSize = 50
	}
	if pagination.MaxPageSize < pagination.DefaultPageSize {
		pagination.MaxPageSize = pagination.DefaultPageSize
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AnnotationService{
		repo:       repo,
		db:         db,
		pagination: pagination,
		logger:     logger.With("component", "annotation_service"),
	}, nil
}

// Create stores a new annotation. Returns store.ErrAnnotationExists for a known text.
func (s *AnnotationService) Create(ctx context.Context, text, labels string) (*domain.Annotation, error) {
	a, err := domain.NewAnnotation(text, labels)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return nil, wrapError("annotation", "create", "failed to save annotation", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("annotation created",
		slog.Int64("annotation_id", a.ID))
	return a, nil
}

// Get returns one annotation.
func (s *AnnotationService) Get(ctx context.Context, id int64) (*domain.Annotation, error) {
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapError("annotation", "get", "failed to load annotation", err)
	}
	return a, nil
}

// UpdateLabels replaces the labels of one annotation and returns the stored result.
func (s *AnnotationService) UpdateLabels(ctx context.Context, id int64, labels string) (*domain.Annotation, error) {
	if err := s.repo.UpdateLabels(ctx, id, domain.NormalizeLabels(labels)); err != nil {
		return nil, wrapError("annotation", "update_labels", "failed to update labels", err)
	}
	return s.Get(ctx, id)
}

// Delete removes one annotation.
func (s *AnnotationService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapError("annotation", "delete", "failed to delete annotation", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("annotation deleted",
		slog.Int64("annotation_id", id))
	return nil
}

// Search returns one page of annotations. Out-of-range page numbers and sizes
// are clamped to the configured bounds.
func (s *AnnotationService) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}
	perPage := params.PerPage
	if perPage < 1 {
		perPage = s.pagination.DefaultPageSize
	}
	if perPage > s.pagination.MaxPageSize {
		perPage = s.pagination.MaxPageSize
	}

	items, total, err := s.repo.Search(ctx, normalizeFilter(params.Filter), store.Page{Number: page, PerPage: perPage})
	if err != nil {
		return nil, wrapError("annotation", "search", "failed to search annotations", err)
	}

	return &SearchResult{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

// BulkLabel sets labels on every existing annotation among ids and returns
// how many were updated. Unknown ids are ignored.
func (s *AnnotationService) BulkLabel(ctx context.Context, ids []int64, labels string) (int, error) {
	normalized := domain.NormalizeLabels(labels)
	updated := 0

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.repo.WithTx(tx)

		existing, err := txRepo.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		for _, a := range existing {
			if err := txRepo.UpdateLabels(ctx, a.ID, normalized); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return 0, wrapError("annotation", "bulk_label", "failed to label annotations", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("bulk label applied",
		slog.Int("requested", len(ids)),
		slog.Int("updated", updated))
	return updated, nil
}

// BulkUpdateLabels adds and removes labels on the selected annotations in a
// single transaction. Only annotations whose labels actually change are written.
func (s *AnnotationService) BulkUpdateLabels(ctx context.Context, params BulkUpdateParams) (*BulkUpdateResult, error) {
	if len(params.IDs) == 0 && params.Criteria == nil {
		return nil, ErrNoTargets
	}
	if len(domain.SplitLabels(params.Add)) == 0 && len(domain.SplitLabels(params.Remove)) == 0 {
		return nil, ErrNoLabelChanges
	}

	matched, updated := 0, 0
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.repo.WithTx(tx)

		ids := params.IDs
		if len(ids) == 0 {
			var err error
			if ids, err = txRepo.FindIDs(ctx, normalizeFilter(*params.Criteria)); err != nil {
				return err
			}
		}

		targets, err := txRepo.GetByIDs(ctx, ids)
		if err != nil {
			return err
		}
		matched = len(targets)

		for _, a := range targets {
			merged := domain.MergeLabels(a.Labels, params.Add, params.Remove)
			if merged == a.Labels {
				continue
			}
			if err := txRepo.UpdateLabels(ctx, a.ID, merged); err != nil {
				return err
			}
			updated++
		}
		return nil
	})
	if err != nil {
		return nil, wrapError("annotation", "bulk_update_labels", "failed to update labels", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("bulk label update applied",
		slog.Int("matched", matched),
		slog.Int("updated", updated))

	return &BulkUpdateResult{
		UpdatedCount: updated,
		Message:      fmt.Sprintf("Updated labels on %d of %d matching annotations", updated, matched),
	}, nil
}

// ImportTexts imports unlabeled texts, skipping blanks and texts already stored.
func (s *AnnotationService) ImportTexts(ctx context.Context, texts []string) (int, error) {
	items := make([]LabeledText, len(texts))
	for i, t := range texts {
		items[i] = LabeledText{Text: t}
	}
	return s.ImportLabeled(ctx, items)
}

// ImportLabeled imports texts together with their labels. Blank texts,
// repeats within the batch and texts already stored are skipped.
// Returns the number of new annotations.
func (s *AnnotationService) ImportLabeled(ctx context.Context, items []LabeledText) (int, error) {
	seen := make(map[string]struct{}, len(items))
	annotations := make([]*domain.Annotation, 0, len(items))
	for _, it := range items {
		text := strings.TrimSpace(it.Text)
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}

		a, err := domain.NewAnnotation(text, it.Labels)
		if err != nil {
			continue
		}
		annotations = append(annotations, a)
	}
	if len(annotations) == 0 {
		return 0, nil
	}

	imported := 0
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		var err error
		imported, err = s.repo.WithTx(tx).InsertIgnoringDuplicates(ctx, annotations)
		return err
	})
	if err != nil {
		return 0, wrapError("annotation", "import", "failed to import texts", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("texts imported",
		slog.Int("submitted", len(items)),
		slog.Int("imported", imported))
	return imported, nil
}

// normalizeFilter trims the keyword conditions and splits label conditions
// the same way stored labels are split.
func normalizeFilter(f store.AnnotationFilter) store.AnnotationFilter {
	out := store.AnnotationFilter{
		Query:         strings.TrimSpace(f.Query),
		ExcludeQuery:  strings.TrimSpace(f.ExcludeQuery),
		UnlabeledOnly: f.UnlabeledOnly,
	}
	if len(f.Labels) > 0 {
		out.Labels = domain.SplitLabels(strings.Join(f.Labels, ","))
	}
	if len(f.ExcludeLabels) > 0 {
		out.ExcludeLabels = domain.SplitLabels(strings.Join(f.ExcludeLabels, ","))
	}
	if len(out.Labels) == 0 {
		out.Labels = nil
	}
	if len(out.ExcludeLabels) == 0 {
		out.ExcludeLabels = nil
	}
	return out
}
