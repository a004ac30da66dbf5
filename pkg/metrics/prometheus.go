// Package metrics provides Prometheus metrics for the fest lifecycle service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns the Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Lifecycle metrics
	transitions      *prometheus.CounterVec
	transactDuration prometheus.Histogram
	lockWaitDuration prometheus.Histogram
	statusEntries    prometheus.Gauge

	// Registry (spreadsheet source) metrics
	sourceReloads prometheus.Counter
	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mela",
		subsystem:        "fest",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.transitions = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "lifecycle_transitions_total",
			Help:      "Lifecycle transitions by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	m.transactDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_transact_duration_seconds",
		Help:      "Duration of committed state store transactions",
		Buckets:   m.histogramBuckets,
	})

	m.lockWaitDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_lock_wait_seconds",
		Help:      "Time spent waiting for the state store lock",
		Buckets:   m.histogramBuckets,
	})

	m.statusEntries = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "status_entries",
		Help:      "Number of registration status entries in the store",
	})

	m.sourceReloads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registry_source_reloads_total",
		Help:      "Times the registrations spreadsheet was reloaded from disk",
	})

	m.cacheHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registry_cache_hits_total",
		Help:      "Registry snapshot cache hits",
	})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "registry_cache_misses_total",
		Help:      "Registry snapshot cache misses",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration by endpoint and method",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Package-level helpers against the global manager.

// RecordTransition counts one lifecycle operation with its outcome
// ("ok" or "error").
func RecordTransition(operation, outcome string) {
	globalManager.transitions.WithLabelValues(operation, outcome).Inc()
}

// ObserveTransact records the duration of a committed store transaction.
func ObserveTransact(d time.Duration) {
	globalManager.transactDuration.Observe(d.Seconds())
}

// ObserveLockWait records time spent acquiring the store lock.
func ObserveLockWait(d time.Duration) {
	globalManager.lockWaitDuration.Observe(d.Seconds())
}

// UpdateStatusEntries sets the current status document size.
func UpdateStatusEntries(n int) {
	globalManager.statusEntries.Set(float64(n))
}

// RecordSourceReload counts a spreadsheet reload.
func RecordSourceReload() {
	globalManager.sourceReloads.Inc()
}

// RecordCacheHit counts a registry cache hit.
func RecordCacheHit() {
	globalManager.cacheHits.Inc()
}

// RecordCacheMiss counts a registry cache miss.
func RecordCacheMiss() {
	globalManager.cacheMisses.Inc()
}

// RecordHTTPRequest counts one HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records one HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, d time.Duration) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(d.Seconds())
}

// GetRegistry returns the custom registry serving /metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
