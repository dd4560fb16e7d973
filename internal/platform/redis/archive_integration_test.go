//go:build integration

package redis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/phrazzld/annotate-api/internal/generation"
)

func TestArchive_RoundTrip(t *testing.T) {
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"docker.io/redis:7-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("* Ready to accept connections").
				WithOccurrence(1).
				WithStartupTimeout(time.Minute),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(container) })

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := Connect(ctx, url)
	require.NoError(t, err)
	defer client.Close()

	archive := NewArchive(client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	labels := "refund"
	record := generation.ArchivedTask{
		Snapshot: generation.Snapshot{
			TaskID:       "task-1",
			Status:       generation.StatusCompleted,
			Progress:     100,
			CurrentCount: 1,
			TotalCount:   1,
			Message:      "Generated 1/1 items",
		},
		Results: generation.Results{
			TaskID:         "task-1",
			Status:         generation.StatusCompleted,
			GeneratedCount: 1,
			Texts:          []generation.GeneratedText{{Text: "Where is my money?", Labels: &labels, RawOutput: "Where is my money? [refund]"}},
		},
		FinishedAt: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, archive.Save(ctx, record))

	got, err := archive.Load(ctx, "task-1")
	require.NoError(t, err)
	assert.Equal(t, record.Snapshot, got.Snapshot)
	assert.Equal(t, record.Results, got.Results)
	assert.True(t, record.FinishedAt.Equal(got.FinishedAt))

	ttl, err := client.TTL(ctx, taskKey("task-1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	_, err = archive.Load(ctx, "missing")
	assert.ErrorIs(t, err, generation.ErrTaskNotFound)
}
