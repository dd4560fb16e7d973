// Package redis stores the final records of generation tasks in Redis so
// their status and results stay readable after the in-memory registry drops
// them.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/phrazzld/annotate-api/internal/generation"
)

const (
	keyPrefix = "annotate:generation:task:"
	pingWait  = 5 * time.Second
)

// Connect parses a redis:// URL, opens a client and checks it with PING.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := goredis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, pingWait)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", opts.Addr, err)
	}
	return client, nil
}

// Archive implements generation.Archive with one JSON value per task.
type Archive struct {
	client goredis.UniversalClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ generation.Archive = (*Archive)(nil)

// NewArchive creates an archive whose records expire after ttl.
func NewArchive(client goredis.UniversalClient, ttl time.Duration, logger *slog.Logger) *Archive {
	if client == nil {
		panic("redis client cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Archive{
		client: client,
		ttl:    ttl,
		logger: logger.With("component", "results_archive"),
	}
}

func taskKey(id string) string {
	return keyPrefix + id
}

// Save implements generation.Archive.Save.
func (a *Archive) Save(ctx context.Context, record generation.ArchivedTask) error {
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode task record: %w", err)
	}

	id := record.Snapshot.TaskID
	if err := a.client.Set(ctx, taskKey(id), payload, a.ttl).Err(); err != nil {
		return fmt.Errorf("failed to archive task %s: %w", id, err)
	}

	a.logger.DebugContext(ctx, "task archived",
		"task_id", id,
		"status", record.Snapshot.Status,
		"bytes", len(payload),
		"ttl", a.ttl)
	return nil
}

// Load implements generation.Archive.Load.
func (a *Archive) Load(ctx context.Context, id string) (*generation.ArchivedTask, error) {
	payload, err := a.client.Get(ctx, taskKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, generation.ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to read archived task %s: %w", id, err)
	}

	var record generation.ArchivedTask
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("failed to decode archived task %s: %w", id, err)
	}
	return &record, nil
}
