package mocks

import (
	"context"
	"database/sql"

	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// TestifyMockAnnotationStore is a mock of store.AnnotationStore interface for use with testify/mock
type TestifyMockAnnotationStore struct {
	mock.Mock
}

var _ store.AnnotationStore = (*TestifyMockAnnotationStore)(nil)

// Create is a mock implementation of store.AnnotationStore.Create
func (m *TestifyMockAnnotationStore) Create(ctx context.Context, a *domain.Annotation) error {
	args := m.Called(ctx, a)
	return args.Error(0)
}

// GetByID is a mock implementation of store.AnnotationStore.GetByID
func (m *TestifyMockAnnotationStore) GetByID(ctx context.Context, id int64) (*domain.Annotation, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*domain.Annotation); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

// GetByText is a mock implementation of store.AnnotationStore.GetByText
func (m *TestifyMockAnnotationStore) GetByText(ctx context.Context, text string) (*domain.Annotation, error) {
	args := m.Called(ctx, text)
	if a, ok := args.Get(0).(*domain.Annotation); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

// UpdateLabels is a mock implementation of store.AnnotationStore.UpdateLabels
func (m *TestifyMockAnnotationStore) UpdateLabels(ctx context.Context, id int64, labels string) error {
	args := m.Called(ctx, id, labels)
	return args.Error(0)
}

// Delete is a mock implementation of store.AnnotationStore.Delete
func (m *TestifyMockAnnotationStore) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// Search is a mock implementation of store.AnnotationStore.Search
func (m *TestifyMockAnnotationStore) Search(
	ctx context.Context,
	filter store.AnnotationFilter,
	page store.Page,
) ([]*domain.Annotation, int, error) {
	args := m.Called(ctx, filter, page)
	items, _ := args.Get(0).([]*domain.Annotation)
	return items, args.Int(1), args.Error(2)
}

// FindIDs is a mock implementation of store.AnnotationStore.FindIDs
func (m *TestifyMockAnnotationStore) FindIDs(ctx context.Context, filter store.AnnotationFilter) ([]int64, error) {
	args := m.Called(ctx, filter)
	ids, _ := args.Get(0).([]int64)
	return ids, args.Error(1)
}

// GetByIDs is a mock implementation of store.AnnotationStore.GetByIDs
func (m *TestifyMockAnnotationStore) GetByIDs(ctx context.Context, ids []int64) ([]*domain.Annotation, error) {
	args := m.Called(ctx, ids)
	items, _ := args.Get(0).([]*domain.Annotation)
	return items, args.Error(1)
}

// InsertIgnoringDuplicates is a mock implementation of store.AnnotationStore.InsertIgnoringDuplicates
func (m *TestifyMockAnnotationStore) InsertIgnoringDuplicates(ctx context.Context, items []*domain.Annotation) (int, error) {
	args := m.Called(ctx, items)
	return args.Int(0), args.Error(1)
}

// WithTx is a mock implementation of store.AnnotationStore.WithTx.
// The mock itself serves the transaction.
func (m *TestifyMockAnnotationStore) WithTx(tx *sql.Tx) store.AnnotationStore {
	return m
}
