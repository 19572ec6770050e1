package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisStore(t *testing.T) *RedisStore {
	t.Helper()

	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	store, err := NewRedisStore(context.Background(), addr, os.Getenv("REDIS_TEST_PASSWORD"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store := newTestRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "test:key", []byte("value"), time.Minute))

	value, err := store.Get(ctx, "test:key")
	require.NoError(t, err)
	assert.Equal(t, []byte("value"), value)

	require.NoError(t, store.Delete(ctx, "test:key"))

	_, err = store.Get(ctx, "test:key")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestNewRedisStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err := NewRedisStore(ctx, "127.0.0.1:1", "")
	assert.Error(t, err)
}
