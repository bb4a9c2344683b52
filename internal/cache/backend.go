// Package cache implements the resilient cache service: a Redis-backed
// remote backend, an in-process fallback backend, and a façade that
// fails over between them while tracking health and usage statistics.
package cache

import (
	"context"
	"time"
)

// BackendName identifies which backend served an operation.
type BackendName string

const (
	// BackendRedis is the remote Redis backend.
	BackendRedis BackendName = "redis"
	// BackendLocal is the in-process fallback backend.
	BackendLocal BackendName = "local"
)

// Descriptor describes the last-known state of a backend.
type Descriptor struct {
	Name           BackendName `json:"backend"`
	Connected      bool        `json:"connected"`
	ResponseTimeMs float64     `json:"response_time_ms"`
}

// BackendStats holds backend-reported sizing. Hit/miss counters are owned
// by the Service, not by backends.
type BackendStats struct {
	TotalKeys   int    `json:"total_keys"`
	MemoryUsage string `json:"memory_usage"`
}

// Backend is the capability contract implemented by both the Redis backend
// and the local fallback backend. Values cross the contract as opaque bytes;
// serialization is owned by the Service.
//
// Absence of a key is never an error: Get reports it via the found flag.
// Errors indicate a connectivity or protocol failure the Service may react
// to by failing over.
type Backend interface {
	// Name reports which backend this is.
	Name() BackendName

	// Get returns the stored value for key. found is false when the key
	// does not exist or has expired.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key. A non-positive ttl applies the backend's
	// configured default TTL; entries are never retained indefinitely.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key, reporting whether it existed.
	Delete(ctx context.Context, key string) (existed bool, err error)

	// Clear removes every key under this backend's namespace and reports
	// how many were removed.
	Clear(ctx context.Context) (removed int, err error)

	// Ping probes liveness and returns the round-trip time in milliseconds.
	Ping(ctx context.Context) (rttMs float64, err error)

	// Stats reports backend sizing (key count, memory usage).
	Stats(ctx context.Context) (BackendStats, error)
}
