package service

import (
	"context"
	"log/slog"

	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/platform/logger"
	"github.com/phrazzld/annotate-api/internal/store"
)

// LabelService manages the label catalogue.
type LabelService struct {
	repo   store.LabelStore
	logger *slog.Logger
}

// NewLabelService creates a new LabelService.
func NewLabelService(repo store.LabelStore, logger *slog.Logger) (*LabelService, error) {
	if repo == nil {
		return nil, &ServiceError{Service: "label", Operation: "create_service", Message: "repo cannot be nil"}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &LabelService{repo: repo, logger: logger.With("component", "label_service")}, nil
}

// Create adds a label. A zero id lets the database assign one.
func (s *LabelService) Create(ctx context.Context, id int64, name string, description, groups *string) (*domain.Label, error) {
	l, err := domain.NewLabel(id, name, description, groups)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, l); err != nil {
		return nil, wrapError("label", "create", "failed to save label", err)
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("label created",
		slog.Int64("label_id", l.ID),
		slog.String("label", l.Label))
	return l, nil
}

// List returns the whole catalogue ordered by id.
func (s *LabelService) List(ctx context.Context) ([]*domain.Label, error) {
	labels, err := s.repo.List(ctx)
	if err != nil {
		return nil, wrapError("label", "list", "failed to list labels", err)
	}
	return labels, nil
}

// Get returns one label.
func (s *LabelService) Get(ctx context.Context, id int64) (*domain.Label, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, wrapError("label", "get", "failed to load label", err)
	}
	return l, nil
}

// Update replaces name, description and groups of an existing label.
func (s *LabelService) Update(ctx context.Context, id int64, name string, description, groups *string) (*domain.Label, error) {
	l, err := domain.NewLabel(id, name, description, groups)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l); err != nil {
		return nil, wrapError("label", "update", "failed to update label", err)
	}
	return l, nil
}

// Delete removes a label from the catalogue. Annotations keep the label text.
func (s *LabelService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return wrapError("label", "delete", "failed to delete label", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("label deleted", slog.Int64("label_id", id))
	return nil
}

// StatsService computes system statistics.
type StatsService struct {
	repo store.StatsStore
}

// NewStatsService creates a new StatsService.
func NewStatsService(repo store.StatsStore) (*StatsService, error) {
	if repo == nil {
		return nil, &ServiceError{Service: "stats", Operation: "create_service", Message: "repo cannot be nil"}
	}
	return &StatsService{repo: repo}, nil
}

// Get returns the current statistics.
func (s *StatsService) Get(ctx context.Context) (*domain.SystemStats, error) {
	stats, err := s.repo.GetSystemStats(ctx)
	if err != nil {
		return nil, wrapError("stats", "get", "failed to compute statistics", err)
	}
	return stats, nil
}
