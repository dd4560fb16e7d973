package store

import (
	"context"

	"github.com/phrazzld/annotate-api/internal/domain"
)

// StatsStore computes aggregate statistics over the annotation store.
type StatsStore interface {
	// GetSystemStats returns totals and per-label counts sorted by count
	// descending, then label ascending.
	GetSystemStats(ctx context.Context) (*domain.SystemStats, error)
}
