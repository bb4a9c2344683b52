package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalBackend_RoundTrip(t *testing.T) {
	backend := NewLocalBackend(time.Hour)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "greeting", []byte(`{"msg":"hello"}`), 0))

	value, found, err := backend.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.True(t, found)
	assert.JSONEq(t, `{"msg":"hello"}`, string(value))
}

func TestLocalBackend_GetMissing(t *testing.T) {
	backend := NewLocalBackend(time.Hour)

	value, found, err := backend.Get(context.Background(), "never-written")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)
}

func TestLocalBackend_ExpiredEntryIsAMiss(t *testing.T) {
	backend := NewLocalBackend(time.Hour)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "short", []byte("v"), 20*time.Millisecond))

	_, found, err := backend.Get(ctx, "short")
	require.NoError(t, err)
	assert.True(t, found)

	time.Sleep(50 * time.Millisecond)

	// Lazy eviction: the entry is reported absent even though the janitor
	// has not swept it yet.
	_, found, err = backend.Get(ctx, "short")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLocalBackend_Delete(t *testing.T) {
	backend := NewLocalBackend(time.Hour)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "k", []byte("v"), 0))

	existed, err := backend.Delete(ctx, "k")
	require.NoError(t, err)
	assert.True(t, existed)

	existed, err = backend.Delete(ctx, "k")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestLocalBackend_Clear(t *testing.T) {
	backend := NewLocalBackend(time.Hour)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, backend.Set(ctx, fmt.Sprintf("k%d", i), []byte("v"), 0))
	}

	removed, err := backend.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, removed)

	_, found, err := backend.Get(ctx, "k0")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLocalBackend_PingNeverFails(t *testing.T) {
	backend := NewLocalBackend(time.Hour)

	rtt, err := backend.Ping(context.Background())
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rtt, 0.0)
	assert.Less(t, rtt, 10.0)
}

func TestLocalBackend_Stats(t *testing.T) {
	backend := NewLocalBackend(time.Hour)
	ctx := context.Background()

	require.NoError(t, backend.Set(ctx, "a", []byte("payload-1"), 0))
	require.NoError(t, backend.Set(ctx, "b", []byte("payload-2"), 0))
	require.NoError(t, backend.Set(ctx, "gone", []byte("x"), 20*time.Millisecond))

	time.Sleep(50 * time.Millisecond)

	stats, err := backend.Stats(ctx)
	require.NoError(t, err)
	// Expired entries do not count as live keys.
	assert.Equal(t, 2, stats.TotalKeys)
	assert.NotEmpty(t, stats.MemoryUsage)
}

func TestLocalBackend_ConcurrentAccess(t *testing.T) {
	backend := NewLocalBackend(time.Hour)
	ctx := context.Background()

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func(n int) {
			defer func() { done <- struct{}{} }()
			for j := 0; j < 100; j++ {
				key := fmt.Sprintf("k%d-%d", n, j)
				_ = backend.Set(ctx, key, []byte("v"), 0)
				_, _, _ = backend.Get(ctx, key)
			}
		}(i)
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	stats, err := backend.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 800, stats.TotalKeys)
}
