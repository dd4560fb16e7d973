package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/platform/logger"
	"github.com/phrazzld/annotate-api/internal/store"
)

// PostgresLabelStore implements the store.LabelStore interface
// using a PostgreSQL database as the storage backend.
type PostgresLabelStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresLabelStore creates a new PostgreSQL implementation of the LabelStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresLabelStore(db store.DBTX, logger *slog.Logger) *PostgresLabelStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresLabelStore{
		db:     db,
		logger: logger.With(slog.String("component", "label_store")),
	}
}

// Ensure PostgresLabelStore implements store.LabelStore interface
var _ store.LabelStore = (*PostgresLabelStore)(nil)

// Create implements store.LabelStore.Create
// When the label carries an explicit id, the id sequence is moved past it
// so later inserts without an id do not collide.
func (s *PostgresLabelStore) Create(ctx context.Context, l *domain.Label) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := l.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	var err error
	if l.ID == 0 {
		err = s.db.QueryRowContext(ctx,
			`INSERT INTO labels (label, description, groups) VALUES ($1, $2, $3) RETURNING id`,
			l.Label, l.Description, l.Groups,
		).Scan(&l.ID)
	} else {
		_, err = s.db.ExecContext(ctx,
			`INSERT INTO labels (id, label, description, groups) VALUES ($1, $2, $3, $4)`,
			l.ID, l.Label, l.Description, l.Groups,
		)
		if err == nil {
			_, err = s.db.ExecContext(ctx,
				`SELECT setval(pg_get_serial_sequence('labels', 'id'), (SELECT MAX(id) FROM labels))`)
		}
	}
	if err != nil {
		if IsUniqueViolation(err) {
			log.Debug("label already exists", slog.String("label", l.Label))
			return store.ErrLabelExists
		}
		log.Error("failed to create label",
			slog.String("error", err.Error()),
			slog.String("label", l.Label))
		return MapError(err)
	}

	log.Debug("label created", slog.Int64("label_id", l.ID), slog.String("label", l.Label))
	return nil
}

// List implements store.LabelStore.List
func (s *PostgresLabelStore) List(ctx context.Context) ([]*domain.Label, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, `SELECT id, label, description, groups FROM labels ORDER BY id`)
	if err != nil {
		log.Error("failed to list labels", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	labels := make([]*domain.Label, 0)
	for rows.Next() {
		var l domain.Label
		if err := rows.Scan(&l.ID, &l.Label, &l.Description, &l.Groups); err != nil {
			return nil, MapError(err)
		}
		labels = append(labels, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return labels, nil
}

// GetByID implements store.LabelStore.GetByID
func (s *PostgresLabelStore) GetByID(ctx context.Context, id int64) (*domain.Label, error) {
	var l domain.Label
	err := s.db.QueryRowContext(ctx,
		`SELECT id, label, description, groups FROM labels WHERE id = $1`, id,
	).Scan(&l.ID, &l.Label, &l.Description, &l.Groups)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrLabelNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get label",
			slog.String("error", err.Error()),
			slog.Int64("label_id", id))
		return nil, MapError(err)
	}
	return &l, nil
}

// Update implements store.LabelStore.Update
func (s *PostgresLabelStore) Update(ctx context.Context, l *domain.Label) error {
	if err := l.Validate(); err != nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE labels SET label = $1, description = $2, groups = $3 WHERE id = $4`,
		l.Label, l.Description, l.Groups, l.ID)
	if err != nil {
		if IsUniqueViolation(err) {
			return store.ErrLabelExists
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to update label",
			slog.String("error", err.Error()),
			slog.Int64("label_id", l.ID))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrLabelNotFound)
}

// Delete implements store.LabelStore.Delete
// Annotations keep the label text; only the catalogue entry is removed.
func (s *PostgresLabelStore) Delete(ctx context.Context, id int64) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM labels WHERE id = $1`, id)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to delete label",
			slog.String("error", err.Error()),
			slog.Int64("label_id", id))
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrLabelNotFound)
}
