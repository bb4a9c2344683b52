// Package config loads cache service configuration from environment
// variables with sensible defaults.
//
// Environment Variables:
//
// Application settings:
//   - PORT: Server port (default: 8080)
//   - LOG_LEVEL: Logging level (default: info)
//
// Redis configuration:
//   - REDIS_ENABLED: Use Redis as the primary backend (default: true)
//   - REDIS_URL: Redis connection string (default: redis://localhost:6379/0)
//   - REDIS_MAX_CONNECTIONS: Connection pool size (default: 10)
//
// Cache behavior:
//   - CACHE_TTL_SECONDS: Default entry TTL (default: 3600)
//   - CACHE_KEY_PREFIX: Namespace prefix for Redis keys (default: "cache:")
//   - CACHE_HEALTHY_LATENCY_MS: Ping latency above which health is
//     reported degraded (default: 100)
//   - CACHE_REPROBE_INTERVAL: How long to serve from the local fallback
//     before re-probing Redis (default: 30s)
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

// Config holds all configuration values for the cache service. Load it
// once at startup and validate before use; values are immutable thereafter.
type Config struct {
	Port     string // Server port number
	LogLevel string // Logging level (debug, info, warn, error)

	RedisEnabled        bool   // Whether Redis is the primary backend
	RedisURL            string // Redis connection string
	RedisMaxConnections string // Connection pool size

	CacheTTLSeconds       string // Default TTL for cache entries
	CacheKeyPrefix        string // Namespace prefix for Redis keys
	CacheHealthyLatencyMs string // Degraded-health latency threshold
	CacheReprobeInterval  string // Fallback-to-Redis re-probe interval
}

// Load creates a Config from environment variables, falling back to
// defaults for anything unset. Call Validate before using the result.
func Load() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		RedisEnabled:        getBoolEnv("REDIS_ENABLED", true),
		RedisURL:            getEnv("REDIS_URL", "redis://localhost:6379/0"),
		RedisMaxConnections: getEnv("REDIS_MAX_CONNECTIONS", "10"),

		CacheTTLSeconds:       getEnv("CACHE_TTL_SECONDS", "3600"),
		CacheKeyPrefix:        getEnv("CACHE_KEY_PREFIX", "cache:"),
		CacheHealthyLatencyMs: getEnv("CACHE_HEALTHY_LATENCY_MS", "100"),
		CacheReprobeInterval:  getEnv("CACHE_REPROBE_INTERVAL", "30s"),
	}
}

// Validate checks that every configured value parses and is in range.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("PORT must be a valid port number between 1 and 65535")
	}

	if c.RedisEnabled {
		if _, err := redis.ParseURL(c.RedisURL); err != nil {
			return fmt.Errorf("REDIS_URL is not a valid redis connection string: %w", err)
		}
		if n, err := strconv.Atoi(c.RedisMaxConnections); err != nil || n < 1 {
			return fmt.Errorf("REDIS_MAX_CONNECTIONS must be a positive number")
		}
	}

	if ttl, err := strconv.Atoi(c.CacheTTLSeconds); err != nil || ttl < 1 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be a positive number")
	}
	if ms, err := strconv.ParseFloat(c.CacheHealthyLatencyMs, 64); err != nil || ms <= 0 {
		return fmt.Errorf("CACHE_HEALTHY_LATENCY_MS must be a positive number")
	}
	if _, err := time.ParseDuration(c.CacheReprobeInterval); err != nil {
		return fmt.Errorf("CACHE_REPROBE_INTERVAL must be a valid duration (e.g., '30s', '1m')")
	}

	return nil
}

// TTL returns the default entry TTL as a duration. Call after Validate.
func (c *Config) TTL() time.Duration {
	ttl, _ := strconv.Atoi(c.CacheTTLSeconds)
	return time.Duration(ttl) * time.Second
}

// PoolSize returns the Redis pool size. Call after Validate.
func (c *Config) PoolSize() int {
	n, _ := strconv.Atoi(c.RedisMaxConnections)
	return n
}

// HealthyLatencyMs returns the degraded-health threshold. Call after Validate.
func (c *Config) HealthyLatencyMs() float64 {
	ms, _ := strconv.ParseFloat(c.CacheHealthyLatencyMs, 64)
	return ms
}

// ReprobeInterval returns the re-probe interval. Call after Validate.
func (c *Config) ReprobeInterval() time.Duration {
	d, _ := time.ParseDuration(c.CacheReprobeInterval)
	return d
}

// getEnv retrieves an environment variable or returns the default when the
// variable is unset or empty.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getBoolEnv retrieves a boolean environment variable, accepting the forms
// strconv.ParseBool understands; anything else yields the default.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
