package redis

import (
	"context"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskKey(t *testing.T) {
	assert.Equal(t, "annotate:generation:task:abc", taskKey("abc"))
}

func TestNewArchive_PanicsOnNilClient(t *testing.T) {
	assert.Panics(t, func() { NewArchive(nil, time.Hour, nil) })
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := Connect(context.Background(), "http://not-redis")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis url")
}

func TestArchive_LoadUnreachable(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	archive := NewArchive(client, time.Hour, nil)
	_, err := archive.Load(context.Background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read archived task abc")
}
