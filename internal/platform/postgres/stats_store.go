package postgres

import (
	"context"
	"log/slog"

	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/platform/logger"
	"github.com/phrazzld/annotate-api/internal/store"
)

// PostgresStatsStore implements the store.StatsStore interface
// using a PostgreSQL database as the storage backend.
type PostgresStatsStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresStatsStore creates a new PostgreSQL implementation of the StatsStore interface.
// If logger is nil, a default logger will be used.
func NewPostgresStatsStore(db store.DBTX, logger *slog.Logger) *PostgresStatsStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresStatsStore{
		db:     db,
		logger: logger.With(slog.String("component", "stats_store")),
	}
}

// Ensure PostgresStatsStore implements store.StatsStore interface
var _ store.StatsStore = (*PostgresStatsStore)(nil)

const (
	totalsQuery = `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE labels <> ''),
			(SELECT COUNT(*) FROM labels)
		FROM annotations
	`

	labelCountsQuery = `
		SELECT label, COUNT(*) AS cnt
		FROM annotations, unnest(string_to_array(labels, ', ')) AS label
		WHERE labels <> '' AND label <> ''
		GROUP BY label
		ORDER BY cnt DESC, label ASC
	`
)

// GetSystemStats implements store.StatsStore.GetSystemStats
func (s *PostgresStatsStore) GetSystemStats(ctx context.Context) (*domain.SystemStats, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	stats := &domain.SystemStats{LabelStatistics: make([]domain.LabelStat, 0)}
	err := s.db.QueryRowContext(ctx, totalsQuery).Scan(
		&stats.TotalTexts,
		&stats.LabeledTexts,
		&stats.TotalLabels,
	)
	if err != nil {
		log.Error("failed to count annotations", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	stats.UnlabeledTexts = stats.TotalTexts - stats.LabeledTexts

	rows, err := s.db.QueryContext(ctx, labelCountsQuery)
	if err != nil {
		log.Error("failed to count labels", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var ls domain.LabelStat
		if err := rows.Scan(&ls.Label, &ls.Count); err != nil {
			return nil, MapError(err)
		}
		stats.LabelStatistics = append(stats.LabelStatistics, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	return stats, nil
}
