package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/mocks"
	"github.com/phrazzld/annotate-api/internal/service"
	"github.com/phrazzld/annotate-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelService(t *testing.T) {
	ctx := context.Background()

	t.Run("create trims the name", func(t *testing.T) {
		repo := &mocks.MockLabelStore{}
		svc, err := service.NewLabelService(repo, discardLogger())
		require.NoError(t, err)

		l, err := svc.Create(ctx, 0, "  sport ", nil, nil)
		require.NoError(t, err)
		assert.Equal(t, "sport", l.Label)
		require.Len(t, repo.CreateCalls, 1)
	})

	t.Run("create rejects commas", func(t *testing.T) {
		repo := &mocks.MockLabelStore{}
		svc, _ := service.NewLabelService(repo, nil)

		_, err := svc.Create(ctx, 0, "a,b", nil, nil)
		assert.ErrorIs(t, err, domain.ErrValidation)
		assert.Empty(t, repo.CreateCalls)
	})

	t.Run("duplicate passes through", func(t *testing.T) {
		svc, _ := service.NewLabelService(&mocks.MockLabelStore{Err: store.ErrLabelExists}, nil)

		_, err := svc.Create(ctx, 0, "sport", nil, nil)
		assert.ErrorIs(t, err, store.ErrLabelExists)
	})

	t.Run("get missing label", func(t *testing.T) {
		svc, _ := service.NewLabelService(&mocks.MockLabelStore{}, nil)

		_, err := svc.Get(ctx, 7)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("update and delete", func(t *testing.T) {
		var updated *domain.Label
		repo := &mocks.MockLabelStore{
			UpdateFn: func(_ context.Context, l *domain.Label) error {
				updated = l
				return nil
			},
		}
		svc, _ := service.NewLabelService(repo, nil)

		group := "topic/sport"
		l, err := svc.Update(ctx, 4, "football", nil, &group)
		require.NoError(t, err)
		assert.Same(t, updated, l)
		assert.Equal(t, int64(4), l.ID)

		require.NoError(t, svc.Delete(ctx, 4))
		assert.Equal(t, []int64{4}, repo.DeleteCalls)
	})

	t.Run("nil repo", func(t *testing.T) {
		_, err := service.NewLabelService(nil, nil)
		assert.Error(t, err)
	})
}

func TestStatsService(t *testing.T) {
	want := &domain.SystemStats{TotalTexts: 3}
	svc, err := service.NewStatsService(&mocks.MockStatsStore{Stats: want})
	require.NoError(t, err)

	got, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Same(t, want, got)

	failing, _ := service.NewStatsService(&mocks.MockStatsStore{Err: errors.New("down")})
	_, err = failing.Get(context.Background())
	var svcErr *service.ServiceError
	assert.ErrorAs(t, err, &svcErr)
}
