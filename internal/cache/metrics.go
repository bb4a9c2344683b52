package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus counters mirror the Service's own hit/miss accounting so the
// same numbers are scrapeable alongside the JSON stats endpoint.
var (
	metricHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Number of cache reads that returned a value.",
	})
	metricMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Number of cache reads that returned no value.",
	})
	metricErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_backend_errors_total",
		Help: "Number of backend connectivity or decode failures.",
	})
	metricFailovers = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_failovers_total",
		Help: "Number of demotions from the Redis backend to the local fallback.",
	})
	metricPromotions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "cache_promotions_total",
		Help: "Number of recoveries back to the Redis backend.",
	})
)
