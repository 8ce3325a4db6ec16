// Package metrics provides Prometheus metrics for the courtlens service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline metrics
	fetchesIssued    *prometheus.CounterVec
	fetchesApplied   *prometheus.CounterVec
	staleResponses   prometheus.Counter
	remoteErrors     *prometheus.CounterVec
	fetchLatency     *prometheus.HistogramVec
	selectionEvents  *prometheus.CounterVec
	reductionsServed prometheus.Counter

	// Display state
	displayedCells prometheus.Gauge
	openNotices    prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry so the default Go collectors stay out of /metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "courtlens",
		subsystem:        "pipeline",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.fetchesIssued = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetches_issued_total",
			Help:      "Remote compute requests issued, by kind (aggregate, contribution).",
		},
		[]string{"kind"},
	)

	m.fetchesApplied = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetches_applied_total",
			Help:      "Remote responses applied to displayed state, by kind.",
		},
		[]string{"kind"},
	)

	m.staleResponses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "stale_responses_dropped_total",
		Help:      "Responses discarded because the selection changed while in flight.",
	})

	m.remoteErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "remote_errors_total",
			Help:      "Remote compute failures surfaced as notices, by kind.",
		},
		[]string{"kind"},
	)

	m.fetchLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "fetch_latency_milliseconds",
			Help:      "Remote compute request latency in milliseconds, by kind.",
			Buckets:   m.histogramBuckets,
		},
		[]string{"kind"},
	)

	m.selectionEvents = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "selection_events_total",
			Help:      "Cluster selection transitions, by resulting state.",
		},
		[]string{"state"},
	)

	m.reductionsServed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "reductions_served_total",
		Help:      "Client-side time reductions served without a refetch.",
	})

	m.displayedCells = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "displayed_cells",
		Help:      "Number of render cells in the currently displayed contribution view.",
	})

	m.openNotices = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "open_notices",
		Help:      "Transient error notices not yet dismissed.",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint, method and status code.",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds.",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// Package-level helpers acting on the global manager.

func RecordFetchIssued(kind string)  { globalManager.fetchesIssued.WithLabelValues(kind).Inc() }
func RecordFetchApplied(kind string) { globalManager.fetchesApplied.WithLabelValues(kind).Inc() }
func RecordStaleResponse()           { globalManager.staleResponses.Inc() }
func RecordRemoteError(kind string)  { globalManager.remoteErrors.WithLabelValues(kind).Inc() }

func RecordFetchLatency(kind string, latencyMs float64) {
	globalManager.fetchLatency.WithLabelValues(kind).Observe(latencyMs)
}

func RecordSelectionEvent(state string) {
	globalManager.selectionEvents.WithLabelValues(state).Inc()
}

func RecordReductionServed() { globalManager.reductionsServed.Inc() }

func UpdateDisplayedCells(n int) { globalManager.displayedCells.Set(float64(n)) }
func UpdateOpenNotices(n int)    { globalManager.openNotices.Set(float64(n)) }

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// GetRegistry exposes the custom registry for the /metrics handler.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
