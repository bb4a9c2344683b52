package cache

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"cache-service/internal/logging"
)

// Status classifies overall cache health.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// Health is the on-demand health snapshot of the active backend.
type Health struct {
	Status         Status      `json:"status"`
	Backend        BackendName `json:"backend"`
	ResponseTimeMs float64     `json:"response_time_ms"`
	Connected      bool        `json:"connected"`
	Message        string      `json:"message,omitempty"`
}

// StatsSnapshot merges the Service's cumulative counters with the active
// backend's sizing. Connected reports whether Redis is currently serving;
// hit/miss counters measure Service usage and survive Clear.
type StatsSnapshot struct {
	Backend     BackendName `json:"backend"`
	Connected   bool        `json:"connected"`
	TotalKeys   int         `json:"total_keys"`
	MemoryUsage string      `json:"memory_usage"`
	Hits        int64       `json:"hits"`
	Misses      int64       `json:"misses"`
}

// Options configures the Service façade.
type Options struct {
	// HealthyLatencyMs is the ping latency above which a connected
	// backend is reported degraded.
	HealthyLatencyMs float64
	// ReprobeInterval is how long the Service serves from the local
	// fallback before re-probing a failed Redis backend.
	ReprobeInterval time.Duration
	// StartupTimeout bounds the construction-time connectivity probe.
	StartupTimeout time.Duration
}

func (o *Options) withDefaults() Options {
	opts := *o
	if opts.HealthyLatencyMs <= 0 {
		opts.HealthyLatencyMs = 100
	}
	if opts.ReprobeInterval <= 0 {
		opts.ReprobeInterval = 30 * time.Second
	}
	if opts.StartupTimeout <= 0 {
		opts.StartupTimeout = 5 * time.Second
	}
	return opts
}

// Service is the cache façade. It owns exactly one active backend at a
// time: Redis while the circuit breaker is closed, the local fallback
// otherwise. Demotion and re-promotion are driven by the breaker, so two
// concurrent failures cannot race to demote twice.
//
// No operation surfaces backend unavailability to the caller; unreachable
// Redis only changes which backend serves. Construct one Service per
// process and share it across request handlers.
type Service struct {
	remote *RedisBackend // nil when Redis is disabled
	local  *LocalBackend

	breaker          *gobreaker.CircuitBreaker
	healthyLatencyMs float64

	hits    atomic.Int64
	misses  atomic.Int64
	errored atomic.Int64
}

// NewService builds the façade and performs startup backend selection: it
// probes Redis once and starts in degraded mode if the probe fails. A nil
// remote backend means Redis is disabled and local-only operation is the
// intended (healthy) state.
func NewService(remote *RedisBackend, local *LocalBackend, opts Options) *Service {
	opts = opts.withDefaults()

	s := &Service{
		remote:           remote,
		local:            local,
		healthyLatencyMs: opts.HealthyLatencyMs,
	}

	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Timeout:     opts.ReprobeInterval,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 1
		},
		IsSuccessful: func(err error) bool {
			// A canceled caller context says nothing about Redis health.
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			switch to {
			case gobreaker.StateOpen:
				metricFailovers.Inc()
				logging.L().Warn("cache demoted to local fallback",
					zap.String("from", from.String()))
			case gobreaker.StateHalfOpen:
				logging.L().Info("re-probing redis backend")
			case gobreaker.StateClosed:
				metricPromotions.Inc()
				logging.L().Info("cache promoted back to redis backend")
			}
		},
	})

	if remote == nil {
		logging.L().Info("redis disabled, serving from local cache only")
		return s
	}

	ctx, cancel := context.WithTimeout(context.Background(), opts.StartupTimeout)
	defer cancel()

	if _, err := s.breaker.Execute(func() (interface{}, error) {
		return remote.Ping(ctx)
	}); err != nil {
		logging.L().Warn("redis unreachable, starting in degraded mode", zap.Error(err))
	} else {
		logging.L().Info("redis connection established")
	}

	return s
}

// Close releases backend resources.
func (s *Service) Close() error {
	if s.remote != nil {
		return s.remote.Close()
	}
	return nil
}

// Degraded reports whether the Service is serving from the local fallback
// while Redis is configured.
func (s *Service) Degraded() bool {
	return s.remote != nil && s.breaker.State() != gobreaker.StateClosed
}

// ActiveBackend reports which backend currently serves operations.
func (s *Service) ActiveBackend() BackendName {
	if s.remote != nil && s.breaker.State() != gobreaker.StateOpen {
		return BackendRedis
	}
	return BackendLocal
}

// Get returns the raw stored bytes for key, counting a hit or miss exactly
// once regardless of which backend served the read.
func (s *Service) Get(ctx context.Context, key string) ([]byte, bool) {
	value, found := s.lookup(ctx, key)
	s.count(found)
	return value, found
}

// GetJSON decodes the stored value for key into dest. A payload that fails
// to decode is treated as a miss, never as a fatal error.
func (s *Service) GetJSON(ctx context.Context, key string, dest interface{}) bool {
	value, found := s.lookup(ctx, key)
	if !found {
		s.count(false)
		return false
	}
	if err := unmarshalValue(value, dest); err != nil {
		s.errored.Add(1)
		metricErrors.Inc()
		logging.L().Warn("cached payload failed to decode, treating as miss",
			zap.String("key", key), zap.Error(err))
		s.count(false)
		return false
	}
	s.count(true)
	return true
}

// Set stores value under key with the given TTL (zero means the configured
// default). Serialization failures are surfaced; backend unavailability is
// absorbed by failover and never returned.
func (s *Service) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := marshalValue(value)
	if err != nil {
		return err
	}

	if s.remoteEligible() {
		_, rerr := s.breaker.Execute(func() (interface{}, error) {
			return nil, s.remote.Set(ctx, key, data, ttl)
		})
		if rerr == nil {
			return nil
		}
		s.recordFailure("set", rerr)
	}

	if err := s.local.Set(ctx, key, data, ttl); err != nil {
		s.errored.Add(1)
		metricErrors.Inc()
		return ErrBackendsUnavailable
	}
	return nil
}

// Delete removes key from the active backend, reporting whether it existed.
func (s *Service) Delete(ctx context.Context, key string) bool {
	if s.remoteEligible() {
		res, err := s.breaker.Execute(func() (interface{}, error) {
			return s.remote.Delete(ctx, key)
		})
		if err == nil {
			return res.(bool)
		}
		s.recordFailure("delete", err)
	}

	existed, _ := s.local.Delete(ctx, key)
	return existed
}

// Clear removes every key from the active backend's namespace and reports
// how many were removed. Hit/miss counters are deliberately untouched:
// they measure Service usage, not backend content.
func (s *Service) Clear(ctx context.Context) (int, bool) {
	if s.remoteEligible() {
		res, err := s.breaker.Execute(func() (interface{}, error) {
			return s.remote.Clear(ctx)
		})
		if err == nil {
			return res.(int), true
		}
		s.recordFailure("clear", err)
	}

	removed, err := s.local.Clear(ctx)
	return removed, err == nil
}

// Health probes the active backend and classifies the result. Serving from
// the local fallback while Redis is configured is the intended degraded
// state; the fallback itself never reports disconnected.
func (s *Service) Health(ctx context.Context) Health {
	if s.remoteEligible() {
		res, err := s.breaker.Execute(func() (interface{}, error) {
			return s.remote.Ping(ctx)
		})
		if err == nil {
			rtt := res.(float64)
			status := StatusHealthy
			var message string
			if rtt > s.healthyLatencyMs {
				status = StatusDegraded
				message = "redis responding slowly"
			}
			return Health{
				Status:         status,
				Backend:        BackendRedis,
				ResponseTimeMs: rtt,
				Connected:      true,
				Message:        message,
			}
		}
		s.recordFailure("ping", err)
	}

	rtt, _ := s.local.Ping(ctx)
	health := Health{
		Status:         StatusHealthy,
		Backend:        BackendLocal,
		ResponseTimeMs: rtt,
		Connected:      true,
	}
	if s.remote != nil {
		health.Status = StatusDegraded
		health.Message = "using local fallback cache, redis unavailable"
	}
	return health
}

// Stats merges the Service-owned counters with the active backend's sizing.
func (s *Service) Stats(ctx context.Context) StatsSnapshot {
	snapshot := StatsSnapshot{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}

	if s.remoteEligible() {
		res, err := s.breaker.Execute(func() (interface{}, error) {
			bs, err := s.remote.Stats(ctx)
			if err != nil {
				return nil, err
			}
			return bs, nil
		})
		if err == nil {
			bs := res.(BackendStats)
			snapshot.Backend = BackendRedis
			snapshot.Connected = true
			snapshot.TotalKeys = bs.TotalKeys
			snapshot.MemoryUsage = bs.MemoryUsage
			return snapshot
		}
		s.recordFailure("stats", err)
	}

	bs, _ := s.local.Stats(ctx)
	snapshot.Backend = BackendLocal
	snapshot.Connected = false
	if s.remote == nil {
		// Local-only operation is the configured state, not a lost
		// connection.
		snapshot.Connected = true
	}
	snapshot.TotalKeys = bs.TotalKeys
	snapshot.MemoryUsage = bs.MemoryUsage
	return snapshot
}

// ErrorCount reports how many backend or decode failures the Service has
// absorbed over its lifetime.
func (s *Service) ErrorCount() int64 {
	return s.errored.Load()
}

// remoteEligible reports whether the next operation should attempt Redis.
// While the breaker is open all traffic goes straight to the fallback;
// half-open lets a single probe through.
func (s *Service) remoteEligible() bool {
	return s.remote != nil && s.breaker.State() != gobreaker.StateOpen
}

func (s *Service) lookup(ctx context.Context, key string) ([]byte, bool) {
	type result struct {
		value []byte
		found bool
	}

	if s.remoteEligible() {
		res, err := s.breaker.Execute(func() (interface{}, error) {
			value, found, err := s.remote.Get(ctx, key)
			if err != nil {
				return nil, err
			}
			return result{value, found}, nil
		})
		if err == nil {
			r := res.(result)
			return r.value, r.found
		}
		s.recordFailure("get", err)
	}

	value, found, err := s.local.Get(ctx, key)
	if err != nil {
		s.errored.Add(1)
		metricErrors.Inc()
		return nil, false
	}
	return value, found
}

func (s *Service) count(hit bool) {
	if hit {
		s.hits.Add(1)
		metricHits.Inc()
	} else {
		s.misses.Add(1)
		metricMisses.Inc()
	}
}

func (s *Service) recordFailure(op string, err error) {
	// Breaker refusals are not new backend failures; the fallback simply
	// serves the request.
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return
	}
	s.errored.Add(1)
	metricErrors.Inc()
	logging.L().Warn("redis operation failed, serving from local fallback",
		zap.String("op", op), zap.Error(err))
}
