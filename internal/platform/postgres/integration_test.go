//go:build integration

package postgres_test

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/phrazzld/annotate-api/internal/domain"
	"github.com/phrazzld/annotate-api/internal/platform/postgres"
	"github.com/phrazzld/annotate-api/internal/store"
	"github.com/phrazzld/annotate-api/internal/testdb"
)

// StoreIntegrationSuite runs the stores against a disposable PostgreSQL database.
type StoreIntegrationSuite struct {
	suite.Suite
	ctx    context.Context
	db     *sql.DB
	logger *slog.Logger
}

func TestStoreIntegrationSuite(t *testing.T) {
	suite.Run(t, new(StoreIntegrationSuite))
}

func (s *StoreIntegrationSuite) SetupSuite() {
	s.ctx = context.Background()
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.db = testdb.Start(s.T())
}

func (s *StoreIntegrationSuite) SetupTest() {
	testdb.Reset(s.T(), s.db)
}

func (s *StoreIntegrationSuite) seed(items ...[2]string) {
	st := postgres.NewPostgresAnnotationStore(s.db, s.logger)
	for _, it := range items {
		a, err := domain.NewAnnotation(it[0], it[1])
		s.Require().NoError(err)
		s.Require().NoError(st.Create(s.ctx, a))
	}
}

func (s *StoreIntegrationSuite) TestAnnotationLifecycle() {
	st := postgres.NewPostgresAnnotationStore(s.db, s.logger)
	t := s.T()

	a, err := domain.NewAnnotation("the weather is nice", "")
	require.NoError(t, err)
	require.NoError(t, st.Create(s.ctx, a))
	assert.NotZero(t, a.ID)

	dup, _ := domain.NewAnnotation("the weather is nice", "x")
	assert.ErrorIs(t, st.Create(s.ctx, dup), store.ErrAnnotationExists)

	got, err := st.GetByText(s.ctx, "the weather is nice")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	require.NoError(t, st.UpdateLabels(s.ctx, a.ID, "positive, weather"))
	got, err = st.GetByID(s.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "positive, weather", got.Labels)

	require.NoError(t, st.Delete(s.ctx, a.ID))
	_, err = st.GetByID(s.ctx, a.ID)
	assert.ErrorIs(t, err, store.ErrAnnotationNotFound)
	assert.ErrorIs(t, st.Delete(s.ctx, a.ID), store.ErrAnnotationNotFound)
}

func (s *StoreIntegrationSuite) TestSearchFilters() {
	s.seed(
		[2]string{"cats are great", "positive, animals"},
		[2]string{"dogs are loud", "negative, animals"},
		[2]string{"cats sleep a lot", ""},
		[2]string{"the sky is blue", "positive-ish"},
	)
	st := postgres.NewPostgresAnnotationStore(s.db, s.logger)
	page := store.Page{Number: 1, PerPage: 50}
	t := s.T()

	texts := func(f store.AnnotationFilter) []string {
		items, total, err := st.Search(s.ctx, f, page)
		require.NoError(t, err)
		require.Equal(t, len(items), total)
		out := make([]string, 0, len(items))
		for _, a := range items {
			out = append(out, a.Text)
		}
		return out
	}

	assert.Equal(t, []string{"cats are great", "cats sleep a lot"}, texts(store.AnnotationFilter{Query: "cats"}))
	assert.Equal(t, []string{"cats are great"}, texts(store.AnnotationFilter{Query: "cats", ExcludeQuery: "sleep"}))
	// Label matching is per element, so "positive" does not match "positive-ish".
	assert.Equal(t, []string{"cats are great"}, texts(store.AnnotationFilter{Labels: []string{"positive"}}))
	assert.Equal(t,
		[]string{"cats sleep a lot", "the sky is blue"},
		texts(store.AnnotationFilter{ExcludeLabels: []string{"animals"}}))
	assert.Equal(t, []string{"cats sleep a lot"}, texts(store.AnnotationFilter{UnlabeledOnly: true}))

	items, total, err := st.Search(s.ctx, store.AnnotationFilter{}, store.Page{Number: 2, PerPage: 3})
	require.NoError(t, err)
	assert.Equal(t, 4, total)
	require.Len(t, items, 1)
	assert.Equal(t, "the sky is blue", items[0].Text)
}

func (s *StoreIntegrationSuite) TestInsertIgnoringDuplicatesInTransaction() {
	s.seed([2]string{"existing", ""})
	st := postgres.NewPostgresAnnotationStore(s.db, s.logger)
	t := s.T()

	var inserted int
	err := store.RunInTransaction(s.ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		items := make([]*domain.Annotation, 0, 3)
		for _, text := range []string{"existing", "fresh one", "fresh two"} {
			a, err := domain.NewAnnotation(text, "generated")
			require.NoError(t, err)
			items = append(items, a)
		}
		var err error
		inserted, err = st.WithTx(tx).InsertIgnoringDuplicates(ctx, items)
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	ids, err := st.FindIDs(s.ctx, store.AnnotationFilter{Labels: []string{"generated"}})
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func (s *StoreIntegrationSuite) TestLabelsAndStats() {
	labels := postgres.NewPostgresLabelStore(s.db, s.logger)
	t := s.T()

	explicit := &domain.Label{ID: 10, Label: "positive"}
	require.NoError(t, labels.Create(s.ctx, explicit))
	generated := &domain.Label{Label: "negative"}
	require.NoError(t, labels.Create(s.ctx, generated))
	assert.Equal(t, int64(11), generated.ID, "sequence should continue after the explicit id")
	assert.ErrorIs(t, labels.Create(s.ctx, &domain.Label{Label: "positive"}), store.ErrLabelExists)

	list, err := labels.List(s.ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	s.seed(
		[2]string{"a", "positive"},
		[2]string{"b", "positive, negative"},
		[2]string{"c", "animals"},
		[2]string{"d", ""},
	)

	stats, err := postgres.NewPostgresStatsStore(s.db, s.logger).GetSystemStats(s.ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalTexts)
	assert.Equal(t, 3, stats.LabeledTexts)
	assert.Equal(t, 1, stats.UnlabeledTexts)
	assert.Equal(t, 2, stats.TotalLabels)
	assert.Equal(t, []domain.LabelStat{
		{Label: "positive", Count: 2},
		{Label: "animals", Count: 1},
		{Label: "negative", Count: 1},
	}, stats.LabelStatistics)
}

func (s *StoreIntegrationSuite) TestRolledBackWritesAreInvisible() {
	t := s.T()

	testdb.WithTx(t, s.db, func(t *testing.T, tx *sql.Tx) {
		st := postgres.NewPostgresAnnotationStore(tx, s.logger)
		a, err := domain.NewAnnotation("only inside the transaction", "tmp")
		require.NoError(t, err)
		require.NoError(t, st.Create(s.ctx, a))

		got, err := st.GetByText(s.ctx, "only inside the transaction")
		require.NoError(t, err)
		assert.Equal(t, "tmp", got.Labels)
	})

	_, err := postgres.NewPostgresAnnotationStore(s.db, s.logger).GetByText(s.ctx, "only inside the transaction")
	assert.ErrorIs(t, err, store.ErrAnnotationNotFound)
}
