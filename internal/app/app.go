// Package app wires configuration, the cache service and the HTTP API
// together and owns the process lifecycle.
package app

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"cache-service/internal/cache"
	"cache-service/internal/config"
	"cache-service/internal/handlers"
	"cache-service/internal/logging"
	"cache-service/internal/middleware"
)

// App holds the constructed application components.
type App struct {
	Config *config.Config
	Cache  *cache.Service
}

// New constructs the cache service from configuration. When Redis is
// enabled the service probes it once and starts degraded if unreachable;
// when disabled the local cache is the intended primary.
func New(cfg *config.Config) (*App, error) {
	var remote *cache.RedisBackend
	if cfg.RedisEnabled {
		var err error
		remote, err = cache.NewRedisBackend(&cache.RedisConfig{
			URL:        cfg.RedisURL,
			PoolSize:   cfg.PoolSize(),
			KeyPrefix:  cfg.CacheKeyPrefix,
			DefaultTTL: cfg.TTL(),
		})
		if err != nil {
			return nil, err
		}
	}

	local := cache.NewLocalBackend(cfg.TTL())

	service := cache.NewService(remote, local, cache.Options{
		HealthyLatencyMs: cfg.HealthyLatencyMs(),
		ReprobeInterval:  cfg.ReprobeInterval(),
	})

	logging.L().Info("cache service initialized",
		zap.Bool("redis_enabled", cfg.RedisEnabled),
		zap.String("backend", string(service.ActiveBackend())),
		zap.Duration("default_ttl", cfg.TTL()),
	)

	return &App{Config: cfg, Cache: service}, nil
}

// Routes builds the HTTP routing table.
func (a *App) Routes() http.Handler {
	h := handlers.New(a.Cache)

	r := mux.NewRouter()
	r.Use(middleware.Logging)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/cache/stats", h.GetStats).Methods(http.MethodGet)
	api.HandleFunc("/cache/clear", h.ClearCache).Methods(http.MethodPost)
	api.HandleFunc("/cache/{key}", h.GetKey).Methods(http.MethodGet)
	api.HandleFunc("/cache/{key}", h.SetKey).Methods(http.MethodPut, http.MethodPost)
	api.HandleFunc("/cache/{key}", h.DeleteKey).Methods(http.MethodDelete)

	return r
}

// Cleanup releases application resources.
func (a *App) Cleanup() {
	if err := a.Cache.Close(); err != nil {
		logging.L().Warn("error closing cache service", zap.Error(err))
	}
}
