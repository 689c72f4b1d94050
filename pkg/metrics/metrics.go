// Package metrics registers the Prometheus collectors exposed on the
// health port's /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors bundles every counter/histogram/gauge the prediction
// service exports. Constructed once in main and threaded by injection
// into whichever component increments it, the same way the teacher
// threads *slog.Logger.
type Collectors struct {
	CacheHits       *prometheus.CounterVec
	CacheMisses     *prometheus.CounterVec
	CacheHitRatio   *prometheus.GaugeVec
	WeatherRetries  prometheus.Counter
	WeatherFailures prometheus.Counter
	BreakerOpens    prometheus.Counter
	PredictionSecs  prometheus.Histogram
	PredictionTotal *prometheus.CounterVec
}

// New registers and returns the collector set. Safe to call once per
// process; a second call against the default registry will panic on
// duplicate registration, matching promauto's usual behavior.
func New() *Collectors {
	return &Collectors{
		CacheHits: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "safeascent_cache_hits_total",
			Help: "Cache hits by tier (l1, l2).",
		}, []string{"tier"}),
		CacheMisses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "safeascent_cache_misses_total",
			Help: "Cache misses by tier (l1, l2).",
		}, []string{"tier"}),
		CacheHitRatio: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "safeascent_cache_hit_ratio",
			Help: "Cache hit ratio by tier (l1, l2), refreshed on Stats() calls.",
		}, []string{"tier"}),
		WeatherRetries: promauto.NewCounter(prometheus.CounterOpts{
			Name: "safeascent_weather_retries_total",
			Help: "Weather provider call retries.",
		}),
		WeatherFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "safeascent_weather_failures_total",
			Help: "Weather provider calls that exhausted their retry budget.",
		}),
		BreakerOpens: promauto.NewCounter(prometheus.CounterOpts{
			Name: "safeascent_weather_breaker_opens_total",
			Help: "Number of times the weather circuit breaker tripped open.",
		}),
		PredictionSecs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "safeascent_prediction_duration_seconds",
			Help:    "End-to-end prediction request latency.",
			Buckets: prometheus.DefBuckets,
		}),
		PredictionTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "safeascent_prediction_requests_total",
			Help: "Prediction requests by outcome (ok, degraded, error).",
		}, []string{"outcome"}),
	}
}
