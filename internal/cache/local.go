package cache

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	gocache "github.com/patrickmn/go-cache"
)

// entryOverhead approximates the per-entry bookkeeping cost (map bucket,
// item struct, expiration timestamp) used for the memory estimate.
const entryOverhead = 64

// LocalBackend is the in-process fallback backend. Expired entries are
// evicted lazily on read, with go-cache's janitor sweeping leftovers in the
// background. Ping never fails: the backend exists to guarantee availability.
type LocalBackend struct {
	store      *gocache.Cache
	defaultTTL time.Duration
}

// NewLocalBackend creates a local backend sharing the same default-TTL
// policy as the Redis backend, so expiration semantics are consistent
// regardless of which backend is active.
func NewLocalBackend(defaultTTL time.Duration) *LocalBackend {
	if defaultTTL <= 0 {
		defaultTTL = time.Hour
	}
	return &LocalBackend{
		store:      gocache.New(defaultTTL, 10*time.Minute),
		defaultTTL: defaultTTL,
	}
}

// Name reports which backend this is.
func (l *LocalBackend) Name() BackendName {
	return BackendLocal
}

// Get returns the value stored under key. go-cache checks expiration on
// read, so an expired entry is reported absent even before the janitor
// has reclaimed it.
func (l *LocalBackend) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, found := l.store.Get(key)
	if !found {
		return nil, false, nil
	}
	data, ok := v.([]byte)
	if !ok {
		// Foreign value type in the store; treat as absent.
		l.store.Delete(key)
		return nil, false, nil
	}
	return data, true, nil
}

// Set stores value under key, applying the default TTL when none is given.
func (l *LocalBackend) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.DefaultExpiration
	}
	l.store.Set(key, value, ttl)
	return nil
}

// Delete removes key, reporting whether it existed.
func (l *LocalBackend) Delete(_ context.Context, key string) (bool, error) {
	_, found := l.store.Get(key)
	l.store.Delete(key)
	return found, nil
}

// Clear removes all entries and reports how many live ones were dropped.
func (l *LocalBackend) Clear(_ context.Context) (int, error) {
	removed := len(l.store.Items())
	l.store.Flush()
	return removed, nil
}

// Ping always reports connected with near-zero latency.
func (l *LocalBackend) Ping(_ context.Context) (float64, error) {
	start := time.Now()
	_ = l.store.ItemCount()
	return float64(time.Since(start).Microseconds()) / 1000.0, nil
}

// Stats reports the live (non-expired) key count and an approximate memory
// figure derived from stored payload sizes.
func (l *LocalBackend) Stats(_ context.Context) (BackendStats, error) {
	items := l.store.Items()

	var bytes uint64
	for key, item := range items {
		bytes += uint64(len(key)) + entryOverhead
		if data, ok := item.Object.([]byte); ok {
			bytes += uint64(len(data))
		}
	}

	return BackendStats{
		TotalKeys:   len(items),
		MemoryUsage: humanize.Bytes(bytes),
	}, nil
}
