package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisConfig configures the remote Redis backend.
type RedisConfig struct {
	// URL is a redis:// connection string (host, port, password, db).
	URL string `json:"url"`
	// PoolSize bounds the connection pool.
	PoolSize int `json:"pool_size"`
	// KeyPrefix namespaces every key this backend manages.
	KeyPrefix string `json:"key_prefix"`
	// DefaultTTL is applied to writes that carry no explicit TTL.
	DefaultTTL time.Duration `json:"default_ttl"`
	// OpTimeout bounds dial, read and write of a single operation.
	OpTimeout time.Duration `json:"op_timeout"`
}

// RedisBackend adapts a pooled go-redis client to the Backend contract.
// All keys it touches are namespaced under its configured prefix, so Clear
// never wipes a shared Redis instance.
type RedisBackend struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// NewRedisBackend creates a Redis backend from a connection string.
// It does not probe connectivity; the Service performs the initial ping so
// an unreachable server still yields a backend eligible for later promotion.
func NewRedisBackend(cfg *RedisConfig) (*RedisBackend, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis config is required")
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}
	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = 5 * time.Second
	}
	opts.DialTimeout = opTimeout
	opts.ReadTimeout = opTimeout
	opts.WriteTimeout = opTimeout

	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = time.Hour
	}

	return &RedisBackend{
		client:     redis.NewClient(opts),
		prefix:     cfg.KeyPrefix,
		defaultTTL: ttl,
	}, nil
}

// Name reports which backend this is.
func (r *RedisBackend) Name() BackendName {
	return BackendRedis
}

// Get retrieves the value stored under key. A missing key is not an error.
func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, NewConnectionError("redis get failed", err)
	}
	return data, true, nil
}

// Set stores value under key. A non-positive ttl applies the default TTL,
// so no entry is retained indefinitely absent deliberate override.
func (r *RedisBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.defaultTTL
	}
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return NewConnectionError("redis set failed", err)
	}
	return nil
}

// Delete removes key, reporting whether it existed.
func (r *RedisBackend) Delete(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Del(ctx, r.prefix+key).Result()
	if err != nil {
		return false, NewConnectionError("redis delete failed", err)
	}
	return n > 0, nil
}

// Clear removes every key under the configured prefix using SCAN, never
// FLUSHDB, so other tenants of the instance are untouched.
func (r *RedisBackend) Clear(ctx context.Context) (int, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return 0, NewConnectionError("redis clear failed", err)
	}
	return len(keys), nil
}

// Ping issues the protocol liveness command and measures elapsed wall time.
func (r *RedisBackend) Ping(ctx context.Context) (float64, error) {
	start := time.Now()
	if err := r.client.Ping(ctx).Err(); err != nil {
		return 0, NewConnectionError("redis ping failed", err)
	}
	return float64(time.Since(start).Microseconds()) / 1000.0, nil
}

// Stats reports the prefixed key count and the server's own memory figure.
// Key count is exact within the namespace; memory usage covers the whole
// instance and falls back to "unknown" when INFO is unavailable.
func (r *RedisBackend) Stats(ctx context.Context) (BackendStats, error) {
	keys, err := r.scanKeys(ctx)
	if err != nil {
		return BackendStats{}, err
	}

	memory := "unknown"
	if info, err := r.client.Info(ctx, "memory").Result(); err == nil {
		for _, line := range strings.Split(info, "\n") {
			if strings.HasPrefix(line, "used_memory_human:") {
				memory = strings.TrimSpace(strings.TrimPrefix(line, "used_memory_human:"))
				break
			}
		}
	}

	return BackendStats{
		TotalKeys:   len(keys),
		MemoryUsage: memory,
	}, nil
}

// Close releases the connection pool.
func (r *RedisBackend) Close() error {
	return r.client.Close()
}

func (r *RedisBackend) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, NewConnectionError("redis scan failed", err)
	}
	return keys, nil
}
