//go:build redis_test

package inflight

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// go test -tags redis_test ./internal/services/inflight with REDIS_URL pointing at a scratch instance
func TestRedisGuardLive(t *testing.T) {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}

	pool, err := NewRedisPool(url)
	require.NoError(t, err)

	g := NewRedisGuard(pool, time.Second)
	defer g.Close()

	ctx := context.Background()
	key := "live-" + time.Now().Format(time.RFC3339Nano)

	held, err := g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, held)

	held, err = g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.False(t, held)

	time.Sleep(1200 * time.Millisecond)

	held, err = g.Acquire(ctx, key)
	require.NoError(t, err)
	assert.True(t, held)

	require.NoError(t, g.Release(ctx, key))
}
