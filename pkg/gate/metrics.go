package gate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains Prometheus metrics for the gate.
type Metrics struct {
	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter

	rateLimitRejections *prometheus.CounterVec

	upstreamCalls *prometheus.CounterVec

	fetchDuration prometheus.Histogram

	queueDepth prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered against the given
// registerer. Pass prometheus.DefaultRegisterer to use the default registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "ganymede_gate_cache_hits_total",
			Help: "Total number of fetches served from cache",
		}),

		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "ganymede_gate_cache_misses_total",
			Help: "Total number of fetches that missed the cache",
		}),

		rateLimitRejections: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ganymede_gate_rate_limit_rejections_total",
				Help: "Total number of fetches rejected by the rate limiter",
			},
			[]string{"reason"},
		),

		upstreamCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ganymede_gate_upstream_calls_total",
				Help: "Total number of producer invocations",
			},
			[]string{"result"},
		),

		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ganymede_gate_fetch_duration_seconds",
			Help:    "Duration of gated fetches in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 16), // 100µs to ~3.3s
		}),

		queueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "ganymede_gate_limiter_queue_depth",
			Help: "Current number of callers queued on the rate limiter",
		}),
	}
}

// RecordCacheHit records a fetch served from cache.
func (m *Metrics) RecordCacheHit() {
	m.cacheHits.Inc()
}

// RecordCacheMiss records a fetch that missed the cache.
func (m *Metrics) RecordCacheMiss() {
	m.cacheMisses.Inc()
}

// RecordRejection records a rate-limit rejection.
func (m *Metrics) RecordRejection(reason string) {
	m.rateLimitRejections.WithLabelValues(reason).Inc()
}

// RecordUpstreamCall records a producer invocation.
func (m *Metrics) RecordUpstreamCall(failed bool) {
	result := "success"
	if failed {
		result = "error"
	}
	m.upstreamCalls.WithLabelValues(result).Inc()
}

// ObserveFetchDuration records the duration of a fetch in seconds.
func (m *Metrics) ObserveFetchDuration(seconds float64) {
	m.fetchDuration.Observe(seconds)
}

// UpdateQueueDepth updates the current limiter queue depth.
func (m *Metrics) UpdateQueueDepth(depth int) {
	m.queueDepth.Set(float64(depth))
}
