package metrics

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Analytics outcomes used as label values.
const (
	OutcomeOK           = "ok"
	OutcomeInconsistent = "inconsistent"
	OutcomeInvalid      = "invalid"
)

// Manager owns the Prometheus collectors of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	enabled        bool
	registry       prometheus.Registerer

	// Ingestion
	boutsRegistered prometheus.Counter
	eventsIngested  prometheus.Counter
	eventsDuplicate prometheus.Counter
	eventsRejected  *prometheus.CounterVec

	// Analytics engine
	analyticsComputed *prometheus.CounterVec
	analyticsLatency  prometheus.Histogram
	eventsPerAnalysis prometheus.Histogram
	cacheLookups      *prometheus.CounterVec

	// Queue and workers
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueErrors *prometheus.CounterVec
	workerCount        prometheus.Gauge
	workerLatency      prometheus.Histogram
	staleResults       prometheus.Counter

	// Store
	boutsTotal prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec
}

// globalManager backs the package-level helpers.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// customRegistry holds only the collectors registered by this package.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "boutstats",
		subsystem:      "analytics",
		latencyBuckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25, 50, 100},
		enabled:        true,
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for all collectors
	auto := promauto.With(m.registry)
	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help})
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}, labels)
	}

	m.boutsRegistered = counter("bouts_registered_total", "Total number of bouts registered")
	m.eventsIngested = counter("events_ingested_total", "Total number of timeline events accepted")
	m.eventsDuplicate = counter("events_duplicate_total", "Total number of duplicate event submissions")
	m.eventsRejected = counterVec("events_rejected_total", "Event submissions rejected by reason", "reason")

	m.analyticsComputed = counterVec("computed_total", "Analytics computations by outcome", "outcome")
	m.analyticsLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "compute_latency_milliseconds",
		Help:      "Time spent in the analytics engine per bout",
		Buckets:   m.latencyBuckets,
	})
	m.eventsPerAnalysis = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_per_analysis",
		Help:      "Number of events fed into one analysis",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	})
	m.cacheLookups = counterVec("cache_lookups_total", "Cached result lookups by result", "result")

	m.queueSize = gauge("queue_size", "Current number of pending recompute jobs")
	m.queueCapacity = gauge("queue_capacity", "Maximum number of pending recompute jobs")
	m.queueEnqueueErrors = counterVec("queue_enqueue_errors_total", "Recompute jobs that could not be enqueued", "reason")
	m.workerCount = gauge("worker_count", "Number of recompute workers")
	m.workerLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Time a worker spends on one recompute job",
		Buckets:   m.latencyBuckets,
	})
	m.staleResults = counter("stale_results_total", "Worker results discarded because newer events arrived")

	m.boutsTotal = gauge("bouts", "Number of bouts held in the store")

	m.httpRequests = counterVec("http_requests_total", "HTTP requests by endpoint, method and status", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.latencyBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = counterVec("errors_total", "Errors by component and type", "component", "type")
}

// ObserveAnalysis records one engine run.
func (m *Manager) ObserveAnalysis(outcome string, events int, latencyMs float64) error {
	if !m.enabled {
		return nil
	}
	switch outcome {
	case OutcomeOK, OutcomeInconsistent, OutcomeInvalid:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownOutcome, outcome)
	}
	m.analyticsComputed.WithLabelValues(outcome).Inc()
	m.analyticsLatency.Observe(latencyMs)
	m.eventsPerAnalysis.Observe(float64(events))
	return nil
}

// Package-level helpers operating on the global manager.

func RecordBoutRegistered() {
	if globalManager.enabled {
		globalManager.boutsRegistered.Inc()
	}
}

func RecordEventIngested() {
	if globalManager.enabled {
		globalManager.eventsIngested.Inc()
	}
}

func RecordEventDuplicate() {
	if globalManager.enabled {
		globalManager.eventsDuplicate.Inc()
	}
}

func RecordEventRejected(reason string) {
	if globalManager.enabled {
		globalManager.eventsRejected.WithLabelValues(reason).Inc()
	}
}

// RecordAnalysis records one engine run; unknown outcomes are counted as errors.
func RecordAnalysis(outcome string, events int, latencyMs float64) {
	if err := globalManager.ObserveAnalysis(outcome, events, latencyMs); err != nil {
		RecordError("metrics", "unknown_outcome")
	}
}

func RecordCacheLookup(hit bool) {
	if !globalManager.enabled {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.cacheLookups.WithLabelValues(result).Inc()
}

func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

func RecordQueueEnqueueError(reason string) {
	if globalManager.enabled {
		globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
	}
}

func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

func RecordWorkerProcessingLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.workerLatency.Observe(latencyMs)
	}
}

func RecordStaleResult() {
	if globalManager.enabled {
		globalManager.staleResults.Inc()
	}
}

func UpdateBoutsTotal(count int) {
	if globalManager.enabled {
		globalManager.boutsTotal.Set(float64(count))
	}
}

func RecordHTTPRequest(endpoint, method, statusCode string, durationMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

func RecordError(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// GetRegistry returns the registry served on /healthz.
// RegisterRuntimeCollectors adds Go runtime and process metrics to the
// registry. Later calls are no-ops.
func RegisterRuntimeCollectors() {
	runtimeOnce.Do(func() {
		customRegistry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
}

var runtimeOnce sync.Once //nolint:gochecknoglobals // guards RegisterRuntimeCollectors

func GetRegistry() *prometheus.Registry {
	return customRegistry
}
