package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/store"
)

// MockLabelStore implements store.LabelStore for testing.
// Unset function fields fall back to the default response values.
type MockLabelStore struct {
	CreateFn  func(ctx context.Context, l *domain.Label) error
	ListFn    func(ctx context.Context) ([]*domain.Label, error)
	GetByIDFn func(ctx context.Context, id int64) (*domain.Label, error)
	UpdateFn  func(ctx context.Context, l *domain.Label) error
	DeleteFn  func(ctx context.Context, id int64) error

	// Default response values
	Labels []*domain.Label
	Err    error

	mu          sync.Mutex
	CreateCalls []*domain.Label
	DeleteCalls []int64
}

var _ store.LabelStore = (*MockLabelStore)(nil)

// Create implements store.LabelStore.Create
func (m *MockLabelStore) Create(ctx context.Context, l *domain.Label) error {
	m.mu.Lock()
	m.CreateCalls = append(m.CreateCalls, l)
	m.mu.Unlock()

	if m.CreateFn != nil {
		return m.CreateFn(ctx, l)
	}
	return m.Err
}

// List implements store.LabelStore.List
func (m *MockLabelStore) List(ctx context.Context) ([]*domain.Label, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx)
	}
	return m.Labels, m.Err
}

// GetByID implements store.LabelStore.GetByID
func (m *MockLabelStore) GetByID(ctx context.Context, id int64) (*domain.Label, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	for _, l := range m.Labels {
		if l.ID == id {
			return l, nil
		}
	}
	return nil, store.ErrLabelNotFound
}

// Update implements store.LabelStore.Update
func (m *MockLabelStore) Update(ctx context.Context, l *domain.Label) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, l)
	}
	return m.Err
}

// Delete implements store.LabelStore.Delete
func (m *MockLabelStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, id)
	m.mu.Unlock()

	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return m.Err
}

// MockStatsStore implements store.StatsStore for testing.
type MockStatsStore struct {
	GetSystemStatsFn func(ctx context.Context) (*domain.SystemStats, error)

	Stats *domain.SystemStats
	Err   error
}

var _ store.StatsStore = (*MockStatsStore)(nil)

// GetSystemStats implements store.StatsStore.GetSystemStats
func (m *MockStatsStore) GetSystemStats(ctx context.Context) (*domain.SystemStats, error) {
	if m.GetSystemStatsFn != nil {
		return m.GetSystemStatsFn(ctx)
	}
	return m.Stats, m.Err
}
