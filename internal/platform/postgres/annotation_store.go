package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/platform/logger"
	"github.com/phrazzld/annotate-api/internal/store"
)

const annotationColumns = "id, text, labels, created_at, updated_at"

// PostgresAnnotationStore implements the store.AnnotationStore interface
// using a PostgreSQL database as the storage backend.
type PostgresAnnotationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresAnnotationStore creates a new PostgreSQL implementation of the AnnotationStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresAnnotationStore(db store.DBTX, logger *slog.Logger) *PostgresAnnotationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresAnnotationStore{
		db:     db,
		logger: logger.With(slog.String("component", "annotation_store")),
	}
}

// Ensure PostgresAnnotationStore implements store.AnnotationStore interface
var _ store.AnnotationStore = (*PostgresAnnotationStore)(nil)

// WithTx implements store.AnnotationStore.WithTx
func (s *PostgresAnnotationStore) WithTx(tx *sql.Tx) store.AnnotationStore {
	return &PostgresAnnotationStore{db: tx, logger: s.logger}
}

// Create implements store.AnnotationStore.Create
func (s *PostgresAnnotationStore) Create(ctx context.Context, a *domain.Annotation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := a.Validate(); err != nil {
		log.Warn("annotation validation failed during create", slog.String("error", err.Error()))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO annotations (text, labels, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query, a.Text, a.Labels, a.CreatedAt, a.UpdatedAt).Scan(&a.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("annotation text already exists")
			return store.ErrAnnotationExists
		}
		log.Error("failed to create annotation", slog.String("error", err.Error()))
		return MapError(err)
	}

	log.Debug("annotation created", slog.Int64("annotation_id", a.ID))
	return nil
}

// GetByID implements store.AnnotationStore.GetByID
func (s *PostgresAnnotationStore) GetByID(ctx context.Context, id int64) (*domain.Annotation, error) {
	query := `SELECT ` + annotationColumns + ` FROM annotations WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetByText implements store.AnnotationStore.GetByText
func (s *PostgresAnnotationStore) GetByText(ctx context.Context, text string) (*domain.Annotation, error) {
	query := `SELECT ` + annotationColumns + ` FROM annotations WHERE md5(text) = md5($1) AND text = $1`
	return s.getOne(ctx, query, text)
}

func (s *PostgresAnnotationStore) getOne(ctx context.Context, query string, arg any) (*domain.Annotation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var a domain.Annotation
	err := s.db.QueryRowContext(ctx, query, arg).Scan(&a.ID, &a.Text, &a.Labels, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAnnotationNotFound
		}
		log.Error("failed to get annotation", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	return &a, nil
}

// UpdateLabels implements store.AnnotationStore.UpdateLabels
func (s *PostgresAnnotationStore) UpdateLabels(ctx context.Context, id int64, labels string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx,
		`UPDATE annotations SET labels = $1, updated_at = $2 WHERE id = $3`,
		labels, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to update annotation labels",
			slog.String("error", err.Error()),
			slog.Int64("annotation_id", id))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrAnnotationNotFound)
}

// Delete implements store.AnnotationStore.Delete
func (s *PostgresAnnotationStore) Delete(ctx context.Context, id int64) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, `DELETE FROM annotations WHERE id = $1`, id)
	if err != nil {
		log.Error("failed to delete annotation",
			slog.String("error", err.Error()),
			slog.Int64("annotation_id", id))
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrAnnotationNotFound); err != nil {
		return err
	}

	log.Debug("annotation deleted", slog.Int64("annotation_id", id))
	return nil
}

// Search implements store.AnnotationStore.Search
func (s *PostgresAnnotationStore) Search(
	ctx context.Context,
	filter store.AnnotationFilter,
	page store.Page,
) ([]*domain.Annotation, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	b := &whereBuilder{}
	where := b.annotationFilter(filter)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM annotations`+where, b.args...).Scan(&total); err != nil {
		log.Error("failed to count annotations", slog.String("error", err.Error()))
		return nil, 0, MapError(err)
	}

	query := `SELECT ` + annotationColumns + ` FROM annotations` + where +
		` ORDER BY id LIMIT ` + b.arg(page.PerPage) + ` OFFSET ` + b.arg(page.Offset())

	items, err := s.queryAnnotations(ctx, query, b.args...)
	if err != nil {
		log.Error("failed to search annotations", slog.String("error", err.Error()))
		return nil, 0, err
	}
	return items, total, nil
}

// FindIDs implements store.AnnotationStore.FindIDs
func (s *PostgresAnnotationStore) FindIDs(ctx context.Context, filter store.AnnotationFilter) ([]int64, error) {
	b := &whereBuilder{}
	where := b.annotationFilter(filter)

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM annotations`+where+` ORDER BY id`, b.args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, MapError(err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// GetByIDs implements store.AnnotationStore.GetByIDs
func (s *PostgresAnnotationStore) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Annotation, error) {
	if len(ids) == 0 {
		return []*domain.Annotation{}, nil
	}

	b := &whereBuilder{}
	placeholders := make([]string, len(ids))
	for i, id := range ids {
		placeholders[i] = b.arg(id)
	}
	query := `SELECT ` + annotationColumns + ` FROM annotations WHERE id IN (` +
		strings.Join(placeholders, ", ") + `) ORDER BY id`

	return s.queryAnnotations(ctx, query, b.args...)
}

// InsertIgnoringDuplicates implements store.AnnotationStore.InsertIgnoringDuplicates
func (s *PostgresAnnotationStore) InsertIgnoringDuplicates(ctx context.Context, items []*domain.Annotation) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		INSERT INTO annotations (text, labels, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT DO NOTHING
	`
	inserted := 0
	for _, a := range items {
		result, err := s.db.ExecContext(ctx, query, a.Text, a.Labels, a.CreatedAt, a.UpdatedAt)
		if err != nil {
			log.Error("failed to insert annotation", slog.String("error", err.Error()))
			return inserted, MapError(err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return inserted, fmt.Errorf("failed to get rows affected: %w", err)
		}
		inserted += int(n)
	}

	log.Debug("annotations inserted",
		slog.Int("requested", len(items)),
		slog.Int("inserted", inserted))
	return inserted, nil
}

func (s *PostgresAnnotationStore) queryAnnotations(ctx context.Context, query string, args ...any) ([]*domain.Annotation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	items := make([]*domain.Annotation, 0)
	for rows.Next() {
		var a domain.Annotation
		if err := rows.Scan(&a.ID, &a.Text, &a.Labels, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		items = append(items, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

// whereBuilder accumulates positional arguments and conditions.
type whereBuilder struct {
	conds []string
	args  []any
}

// arg appends v and returns its placeholder.
func (b *whereBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return fmt.Sprintf("$%d", len(b.args))
}

func (b *whereBuilder) list(values []string) string {
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = b.arg(v)
	}
	return "ARRAY[" + strings.Join(placeholders, ", ") + "]::text[]"
}

// annotationFilter returns a " WHERE ..." clause, or "" when the filter is empty.
// Labels are stored normalized, so splitting on the separator yields exact label values.
func (b *whereBuilder) annotationFilter(f store.AnnotationFilter) string {
	labelArray := "string_to_array(labels, '" + domain.LabelSeparator + "')"

	if f.Query != "" {
		b.conds = append(b.conds, "strpos(text, "+b.arg(f.Query)+") > 0")
	}
	if f.ExcludeQuery != "" {
		b.conds = append(b.conds, "strpos(text, "+b.arg(f.ExcludeQuery)+") = 0")
	}
	if len(f.Labels) > 0 {
		b.conds = append(b.conds, labelArray+" && "+b.list(f.Labels))
	}
	if len(f.ExcludeLabels) > 0 {
		b.conds = append(b.conds, "NOT ("+labelArray+" && "+b.list(f.ExcludeLabels)+")")
	}
	if f.UnlabeledOnly {
		b.conds = append(b.conds, "labels = ''")
	}

	if len(b.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(b.conds, " AND ")
}
