package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL",
		"REDIS_ENABLED", "REDIS_URL", "REDIS_MAX_CONNECTIONS",
		"CACHE_TTL_SECONDS", "CACHE_KEY_PREFIX",
		"CACHE_HEALTHY_LATENCY_MS", "CACHE_REPROBE_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.RedisEnabled)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURL)
	assert.Equal(t, "cache:", cfg.CacheKeyPrefix)

	require.NoError(t, cfg.Validate())
	assert.Equal(t, time.Hour, cfg.TTL())
	assert.Equal(t, 10, cfg.PoolSize())
	assert.Equal(t, 100.0, cfg.HealthyLatencyMs())
	assert.Equal(t, 30*time.Second, cfg.ReprobeInterval())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_ENABLED", "false")
	t.Setenv("CACHE_TTL_SECONDS", "60")
	t.Setenv("CACHE_REPROBE_INTERVAL", "5s")

	cfg := Load()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.RedisEnabled)
	assert.Equal(t, time.Minute, cfg.TTL())
	assert.Equal(t, 5*time.Second, cfg.ReprobeInterval())
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"invalid port", func(c *Config) { c.Port = "not-a-port" }},
		{"port out of range", func(c *Config) { c.Port = "70000" }},
		{"invalid redis url", func(c *Config) { c.RedisURL = "http://wrong-scheme" }},
		{"zero pool size", func(c *Config) { c.RedisMaxConnections = "0" }},
		{"non-numeric ttl", func(c *Config) { c.CacheTTLSeconds = "soon" }},
		{"negative ttl", func(c *Config) { c.CacheTTLSeconds = "-1" }},
		{"bad latency threshold", func(c *Config) { c.CacheHealthyLatencyMs = "fast" }},
		{"bad reprobe interval", func(c *Config) { c.CacheReprobeInterval = "whenever" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cfg := Load()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_RedisConfigIgnoredWhenDisabled(t *testing.T) {
	clearEnv(t)

	cfg := Load()
	cfg.RedisEnabled = false
	cfg.RedisURL = "not-a-redis-url"

	assert.NoError(t, cfg.Validate())
}
