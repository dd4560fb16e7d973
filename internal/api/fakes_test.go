package api

import (
	"context"

	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/generation"
	"github.com/phrazzld/annotate-api/internal/service"
	"github.com/phrazzld/annotate-api/internal/store"
)

type fakeAnnotations struct {
	CreateFn           func(ctx context.Context, text, labels string) (*domain.Annotation, error)
	GetFn              func(ctx context.Context, id int64) (*domain.Annotation, error)
	UpdateLabelsFn     func(ctx context.Context, id int64, labels string) (*domain.Annotation, error)
	DeleteFn           func(ctx context.Context, id int64) error
	SearchFn           func(ctx context.Context, params service.SearchParams) (*service.SearchResult, error)
	BulkLabelFn        func(ctx context.Context, ids []int64, labels string) (int, error)
	BulkUpdateLabelsFn func(ctx context.Context, params service.BulkUpdateParams) (*service.BulkUpdateResult, error)
	ImportTextsFn      func(ctx context.Context, texts []string) (int, error)
	ImportLabeledFn    func(ctx context.Context, items []service.LabeledText) (int, error)
}

func (f *fakeAnnotations) Create(ctx context.Context, text, labels string) (*domain.Annotation, error) {
	return f.CreateFn(ctx, text, labels)
}

func (f *fakeAnnotations) Get(ctx context.Context, id int64) (*domain.Annotation, error) {
	return f.GetFn(ctx, id)
}

func (f *fakeAnnotations) UpdateLabels(ctx context.Context, id int64, labels string) (*domain.Annotation, error) {
	return f.UpdateLabelsFn(ctx, id, labels)
}

func (f *fakeAnnotations) Delete(ctx context.Context, id int64) error {
	return f.DeleteFn(ctx, id)
}

func (f *fakeAnnotations) Search(ctx context.Context, params service.SearchParams) (*service.SearchResult, error) {
	return f.SearchFn(ctx, params)
}

func (f *fakeAnnotations) BulkLabel(ctx context.Context, ids []int64, labels string) (int, error) {
	return f.BulkLabelFn(ctx, ids, labels)
}

func (f *fakeAnnotations) BulkUpdateLabels(
	ctx context.Context,
	params service.BulkUpdateParams,
) (*service.BulkUpdateResult, error) {
	return f.BulkUpdateLabelsFn(ctx, params)
}

func (f *fakeAnnotations) ImportTexts(ctx context.Context, texts []string) (int, error) {
	return f.ImportTextsFn(ctx, texts)
}

func (f *fakeAnnotations) ImportLabeled(ctx context.Context, items []service.LabeledText) (int, error) {
	return f.ImportLabeledFn(ctx, items)
}

type fakeLabels struct {
	labels map[int64]*domain.Label
	nextID int64
}

func newFakeLabels() *fakeLabels {
	return &fakeLabels{labels: make(map[int64]*domain.Label), nextID: 1}
}

func (f *fakeLabels) Create(ctx context.Context, id int64, name string, description, groups *string) (*domain.Label, error) {
	l, err := domain.NewLabel(id, name, description, groups)
	if err != nil {
		return nil, err
	}
	for _, existing := range f.labels {
		if existing.Label == l.Label || existing.ID == l.ID {
			return nil, store.ErrLabelExists
		}
	}
	if l.ID == 0 {
		l.ID = f.nextID
	}
	if l.ID >= f.nextID {
		f.nextID = l.ID + 1
	}
	f.labels[l.ID] = l
	return l, nil
}

func (f *fakeLabels) List(ctx context.Context) ([]*domain.Label, error) {
	out := make([]*domain.Label, 0, len(f.labels))
	for id := int64(1); id < f.nextID; id++ {
		if l, ok := f.labels[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeLabels) Get(ctx context.Context, id int64) (*domain.Label, error) {
	l, ok := f.labels[id]
	if !ok {
		return nil, store.ErrLabelNotFound
	}
	return l, nil
}

func (f *fakeLabels) Update(ctx context.Context, id int64, name string, description, groups *string) (*domain.Label, error) {
	if _, ok := f.labels[id]; !ok {
		return nil, store.ErrLabelNotFound
	}
	l, err := domain.NewLabel(id, name, description, groups)
	if err != nil {
		return nil, err
	}
	f.labels[id] = l
	return l, nil
}

func (f *fakeLabels) Delete(ctx context.Context, id int64) error {
	if _, ok := f.labels[id]; !ok {
		return store.ErrLabelNotFound
	}
	delete(f.labels, id)
	return nil
}

type fakeStats struct {
	stats *domain.SystemStats
	err   error
}

func (f *fakeStats) Get(ctx context.Context) (*domain.SystemStats, error) {
	return f.stats, f.err
}

type fakeGeneration struct {
	StartFn   func(ctx context.Context, req generation.Request) (*generation.Task, error)
	StreamFn  func(ctx context.Context, id string) (*generation.Stream, error)
	CancelFn  func(ctx context.Context, id string) error
	StatusFn  func(ctx context.Context, id string) (*generation.Snapshot, error)
	ResultsFn func(ctx context.Context, id string) (*generation.Results, error)
	ListFn    func(ctx context.Context) []generation.Snapshot
}

func (f *fakeGeneration) Start(ctx context.Context, req generation.Request) (*generation.Task, error) {
	return f.StartFn(ctx, req)
}

func (f *fakeGeneration) Stream(ctx context.Context, id string) (*generation.Stream, error) {
	return f.StreamFn(ctx, id)
}

func (f *fakeGeneration) Cancel(ctx context.Context, id string) error {
	return f.CancelFn(ctx, id)
}

func (f *fakeGeneration) Status(ctx context.Context, id string) (*generation.Snapshot, error) {
	return f.StatusFn(ctx, id)
}

func (f *fakeGeneration) Results(ctx context.Context, id string) (*generation.Results, error) {
	return f.ResultsFn(ctx, id)
}

func (f *fakeGeneration) List(ctx context.Context) []generation.Snapshot {
	if f.ListFn == nil {
		return nil
	}
	return f.ListFn(ctx)
}
