package service_test

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/phrazzld/annotate-api/internal/config"
	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/mocks"
	"github.com/phrazzld/annotate-api/internal/service"
	"github.com/phrazzld/annotate-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testPagination = config.PaginationConfig{DefaultPageSize: 50, MaxPageSize: 1000}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type annotationFixture struct {
	repo    *mocks.TestifyMockAnnotationStore
	sqlMock sqlmock.Sqlmock
	svc     *service.AnnotationService
}

func newAnnotationFixture(t *testing.T) *annotationFixture {
	t.Helper()
	db, sqlMock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := new(mocks.TestifyMockAnnotationStore)
	svc, err := service.NewAnnotationService(repo, db, testPagination, discardLogger())
	require.NoError(t, err)

	t.Cleanup(func() {
		repo.AssertExpectations(t)
		assert.NoError(t, sqlMock.ExpectationsWereMet())
	})
	return &annotationFixture{repo: repo, sqlMock: sqlMock, svc: svc}
}

func TestNewAnnotationService_RequiresDependencies(t *testing.T) {
	_, err := service.NewAnnotationService(nil, &sql.DB{}, testPagination, nil)
	assert.Error(t, err)

	_, err = service.NewAnnotationService(new(mocks.TestifyMockAnnotationStore), nil, testPagination, nil)
	assert.Error(t, err)
}

func TestAnnotationService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("normalizes text and labels", func(t *testing.T) {
		f := newAnnotationFixture(t)
		f.repo.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Annotation) bool {
			return a.Text == "hello" && a.Labels == "a, b"
		})).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.Annotation).ID = 42
		}).Return(nil)

		a, err := f.svc.Create(ctx, "  hello ", "a,，b, a")
		require.NoError(t, err)
		assert.Equal(t, int64(42), a.ID)
	})

	t.Run("duplicate text passes through", func(t *testing.T) {
		f := newAnnotationFixture(t)
		f.repo.On("Create", mock.Anything, mock.Anything).Return(store.ErrAnnotationExists)

		_, err := f.svc.Create(ctx, "hello", "")
		assert.ErrorIs(t, err, store.ErrAnnotationExists)
	})

	t.Run("empty text is a validation error", func(t *testing.T) {
		f := newAnnotationFixture(t)

		_, err := f.svc.Create(ctx, "   ", "")
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("unexpected errors are wrapped", func(t *testing.T) {
		f := newAnnotationFixture(t)
		f.repo.On("Create", mock.Anything, mock.Anything).Return(errors.New("connection reset"))

		_, err := f.svc.Create(ctx, "hello", "")
		var svcErr *service.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "create", svcErr.Operation)
	})
}

func TestAnnotationService_UpdateLabels(t *testing.T) {
	f := newAnnotationFixture(t)
	stored := &domain.Annotation{ID: 3, Text: "t", Labels: "x, y"}
	f.repo.On("UpdateLabels", mock.Anything, int64(3), "x, y").Return(nil)
	f.repo.On("GetByID", mock.Anything, int64(3)).Return(stored, nil)

	a, err := f.svc.UpdateLabels(context.Background(), 3, " x ,y,")
	require.NoError(t, err)
	assert.Same(t, stored, a)
}

func TestAnnotationService_Search(t *testing.T) {
	tests := []struct {
		name     string
		params   service.SearchParams
		wantPage store.Page
	}{
		{
			name:     "defaults",
			params:   service.SearchParams{},
			wantPage: store.Page{Number: 1, PerPage: 50},
		},
		{
			name:     "per page clamped",
			params:   service.SearchParams{Page: 3, PerPage: 5000},
			wantPage: store.Page{Number: 3, PerPage: 1000},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newAnnotationFixture(t)
			f.repo.On("Search", mock.Anything, store.AnnotationFilter{}, tc.wantPage).
				Return([]*domain.Annotation{}, 0, nil)

			res, err := f.svc.Search(context.Background(), tc.params)
			require.NoError(t, err)
			assert.Equal(t, tc.wantPage.Number, res.Page)
			assert.Equal(t, tc.wantPage.PerPage, res.PerPage)
		})
	}

	t.Run("label conditions are split and trimmed", func(t *testing.T) {
		f := newAnnotationFixture(t)
		want := store.AnnotationFilter{
			Query:         "cat",
			Labels:        []string{"a", "b"},
			ExcludeLabels: []string{"c"},
		}
		f.repo.On("Search", mock.Anything, want, store.Page{Number: 1, PerPage: 10}).
			Return([]*domain.Annotation{{ID: 1}}, 1, nil)

		res, err := f.svc.Search(context.Background(), service.SearchParams{
			Filter: store.AnnotationFilter{
				Query:         " cat ",
				Labels:        []string{"a, b"},
				ExcludeLabels: []string{" c "},
			},
			Page:    1,
			PerPage: 10,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, res.Total)
	})
}

func TestAnnotationService_BulkLabel(t *testing.T) {
	f := newAnnotationFixture(t)
	f.sqlMock.ExpectBegin()
	f.sqlMock.ExpectCommit()

	f.repo.On("GetByIDs", mock.Anything, []int64{1, 2, 99}).
		Return([]*domain.Annotation{{ID: 1}, {ID: 2}}, nil)
	f.repo.On("UpdateLabels", mock.Anything, int64(1), "pos").Return(nil)
	f.repo.On("UpdateLabels", mock.Anything, int64(2), "pos").Return(nil)

	n, err := f.svc.BulkLabel(context.Background(), []int64{1, 2, 99}, " pos ")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestAnnotationService_BulkUpdateLabels(t *testing.T) {
	ctx := context.Background()

	t.Run("requires targets", func(t *testing.T) {
		f := newAnnotationFixture(t)
		_, err := f.svc.BulkUpdateLabels(ctx, service.BulkUpdateParams{Add: "x"})
		assert.ErrorIs(t, err, service.ErrNoTargets)
		assert.ErrorIs(t, err, domain.ErrValidation)
	})

	t.Run("requires a change", func(t *testing.T) {
		f := newAnnotationFixture(t)
		_, err := f.svc.BulkUpdateLabels(ctx, service.BulkUpdateParams{IDs: []int64{1}, Add: " , "})
		assert.ErrorIs(t, err, service.ErrNoLabelChanges)
	})

	t.Run("by criteria only writes changed rows", func(t *testing.T) {
		f := newAnnotationFixture(t)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		criteria := store.AnnotationFilter{Labels: []string{"animals"}}
		f.repo.On("FindIDs", mock.Anything, criteria).Return([]int64{1, 2, 3}, nil)
		f.repo.On("GetByIDs", mock.Anything, []int64{1, 2, 3}).Return([]*domain.Annotation{
			{ID: 1, Labels: "animals, cute"},
			{ID: 2, Labels: "animals, pets"},
			{ID: 3, Labels: "animals, cute, old"},
		}, nil)
		f.repo.On("UpdateLabels", mock.Anything, int64(2), "animals, pets, cute").Return(nil)
		f.repo.On("UpdateLabels", mock.Anything, int64(3), "animals, cute").Return(nil)

		res, err := f.svc.BulkUpdateLabels(ctx, service.BulkUpdateParams{
			Criteria: &criteria,
			Add:      "cute",
			Remove:   "old",
		})
		require.NoError(t, err)
		assert.Equal(t, 2, res.UpdatedCount)
		assert.Equal(t, "Updated labels on 2 of 3 matching annotations", res.Message)
	})

	t.Run("store failure rolls back", func(t *testing.T) {
		f := newAnnotationFixture(t)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectRollback()

		f.repo.On("GetByIDs", mock.Anything, []int64{1}).Return([]*domain.Annotation{{ID: 1}}, nil)
		f.repo.On("UpdateLabels", mock.Anything, int64(1), "x").Return(errors.New("boom"))

		_, err := f.svc.BulkUpdateLabels(ctx, service.BulkUpdateParams{IDs: []int64{1}, Add: "x"})
		var svcErr *service.ServiceError
		require.ErrorAs(t, err, &svcErr)
		assert.Equal(t, "bulk_update_labels", svcErr.Operation)
	})
}

func TestAnnotationService_ImportTexts(t *testing.T) {
	t.Run("skips blanks and repeats", func(t *testing.T) {
		f := newAnnotationFixture(t)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		f.repo.On("InsertIgnoringDuplicates", mock.Anything, mock.MatchedBy(func(items []*domain.Annotation) bool {
			return len(items) == 2 && items[0].Text == "one" && items[1].Text == "two"
		})).Return(1, nil)

		n, err := f.svc.ImportTexts(context.Background(), []string{" one ", "", "two", "one", "   "})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("nothing to import", func(t *testing.T) {
		f := newAnnotationFixture(t)
		n, err := f.svc.ImportTexts(context.Background(), []string{"", " "})
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("labeled import keeps labels", func(t *testing.T) {
		f := newAnnotationFixture(t)
		f.sqlMock.ExpectBegin()
		f.sqlMock.ExpectCommit()

		f.repo.On("InsertIgnoringDuplicates", mock.Anything, mock.MatchedBy(func(items []*domain.Annotation) bool {
			return len(items) == 1 && items[0].Labels == "sport, news"
		})).Return(1, nil)

		n, err := f.svc.ImportLabeled(context.Background(), []service.LabeledText{
			{Text: "match report", Labels: "sport，news"},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}
