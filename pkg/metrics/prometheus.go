// Package metrics provides Prometheus metrics for the benchmetrics engine.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the benchmark engine.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	registry         prometheus.Registerer

	// Calculation Metrics - Metric derivation throughput and failures
	calculationsTotal  *prometheus.CounterVec
	calculationErrors  *prometheus.CounterVec
	calculationLatency prometheus.Histogram

	// Comparison Metrics - Benchmark comparison throughput and data shape
	comparisonsTotal    prometheus.Counter
	comparisonErrors    *prometheus.CounterVec
	comparisonLatency   prometheus.Histogram
	filteredSampleSizes prometheus.Histogram

	// Cache Metrics - Hit/miss/eviction per named cache
	cacheHits      *prometheus.CounterVec
	cacheMisses    *prometheus.CounterVec
	cacheEvictions *prometheus.CounterVec
	cacheExpiries  *prometheus.CounterVec

	// Gateway / Coordinator Metrics - Resilience instrumentation
	fetchAttempts      prometheus.Counter
	fetchRetries       prometheus.Counter
	fetchFailures      prometheus.Counter
	fetchCoalesced     prometheus.Counter
	fetchLatency       prometheus.Histogram
	breakerState       prometheus.Gauge // 0=closed 1=half-open 2=open
	breakerTransitions *prometheus.CounterVec
	breakerShortstops  prometheus.Counter

	// Ingest Metrics - Async benchmark record intake
	queueSize         prometheus.Gauge
	queueCapacity     prometheus.Gauge
	queueUtilization  prometheus.Gauge
	queueEnqueues     prometheus.Counter
	queueEnqueueDrops *prometheus.CounterVec
	queueDequeues     prometheus.Counter
	ingestAccepted    prometheus.Counter
	ingestDuplicates  prometheus.Counter
	ingestRejected    *prometheus.CounterVec
	ingestLatency     prometheus.Histogram
	storedRecords     prometheus.Gauge

	// HTTP Performance Metrics
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
		namespace:        "benchmetrics",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	// Initialize metrics
	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	// Ensure metrics are registered on the configured registry (custom by default)
	auto := promauto.With(m.registry)

	// Calculation Metrics
	m.calculationsTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calculations_total",
		Help:      "Total number of metric calculations by metric type",
	}, []string{"metric"})

	m.calculationErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calculation_errors_total",
		Help:      "Total number of failed metric calculations by metric type and error kind",
	}, []string{"metric", "kind"})

	m.calculationLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "calculation_latency_milliseconds",
		Help:      "Histogram of metric calculation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	// Comparison Metrics
	m.comparisonsTotal = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparisons_total",
		Help:      "Total number of benchmark comparisons produced",
	})

	m.comparisonErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparison_errors_total",
		Help:      "Total number of failed benchmark comparisons by error kind",
	}, []string{"kind"})

	m.comparisonLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparison_latency_milliseconds",
		Help:      "Histogram of benchmark comparison latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.filteredSampleSizes = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "filtered_sample_size",
		Help:      "Histogram of benchmark sample sizes surviving the quality filter",
		Buckets:   []float64{1, 3, 5, 10, 20, 30, 50, 100, 250},
	})

	// Cache Metrics
	m.cacheHits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Total cache hits by cache name",
	}, []string{"cache"})

	m.cacheMisses = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Total cache misses by cache name",
	}, []string{"cache"})

	m.cacheEvictions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_evictions_total",
		Help:      "Total capacity evictions by cache name",
	}, []string{"cache"})

	m.cacheExpiries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_expiries_total",
		Help:      "Total TTL expiries removed on access by cache name",
	}, []string{"cache"})

	// Gateway / Coordinator Metrics
	m.fetchAttempts = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_attempts_total",
		Help:      "Total benchmark gateway fetch attempts, including retries",
	})

	m.fetchRetries = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_retries_total",
		Help:      "Total benchmark gateway fetch retries after transient failures",
	})

	m.fetchFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_failures_total",
		Help:      "Total benchmark gateway fetches that exhausted their attempt budget",
	})

	m.fetchCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_coalesced_total",
		Help:      "Total fetch requests coalesced onto an already in-flight call",
	})

	m.fetchLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_latency_milliseconds",
		Help:      "Histogram of gateway fetch latency in milliseconds",
		Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	})

	m.breakerState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "breaker_state",
		Help:      "Circuit breaker state (0=closed, 1=half-open, 2=open)",
	})

	m.breakerTransitions = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "breaker_transitions_total",
		Help:      "Total circuit breaker state transitions by target state",
	}, []string{"to"})

	m.breakerShortstops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "breaker_shortstops_total",
		Help:      "Total requests rejected immediately while the breaker was open",
	})

	// Ingest Metrics
	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_queue_size",
		Help:      "Current number of benchmark records waiting in the ingest queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_queue_capacity",
		Help:      "Configured capacity of the ingest queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_queue_utilization",
		Help:      "Ingest queue fill ratio (0.0 to 1.0)",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_enqueues_total",
		Help:      "Total benchmark records accepted onto the ingest queue",
	})

	m.queueEnqueueDrops = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_enqueue_drops_total",
		Help:      "Total benchmark records dropped at enqueue time by reason",
	}, []string{"reason"})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_dequeues_total",
		Help:      "Total benchmark records handed to ingest workers",
	})

	m.ingestAccepted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_records_accepted_total",
		Help:      "Total benchmark records validated and stored",
	})

	m.ingestDuplicates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_records_duplicate_total",
		Help:      "Total benchmark records skipped as already-seen duplicates",
	})

	m.ingestRejected = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_records_rejected_total",
		Help:      "Total benchmark records rejected by validation, by reason",
	}, []string{"reason"})

	m.ingestLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ingest_latency_milliseconds",
		Help:      "Histogram of per-record ingest processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.storedRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "benchmark_records_stored",
		Help:      "Current number of benchmark records held by the record store",
	})

	// HTTP Performance Metrics
	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	}, []string{"endpoint", "method", "status_code"})
}

// Calculation Metrics Functions.

// RecordCalculation increments the calculations counter for a metric type.
func RecordCalculation(metric string) {
	globalManager.calculationsTotal.WithLabelValues(metric).Inc()
}

// RecordCalculationError increments the calculation errors counter.
func RecordCalculationError(metric, kind string) {
	globalManager.calculationErrors.WithLabelValues(metric, kind).Inc()
}

// RecordCalculationLatency records calculation latency in milliseconds.
func RecordCalculationLatency(latencyMs float64) {
	globalManager.calculationLatency.Observe(latencyMs)
}

// Comparison Metrics Functions.

// RecordComparison increments the comparisons counter.
func RecordComparison() {
	globalManager.comparisonsTotal.Inc()
}

// RecordComparisonError increments the comparison errors counter.
func RecordComparisonError(kind string) {
	globalManager.comparisonErrors.WithLabelValues(kind).Inc()
}

// RecordComparisonLatency records comparison latency in milliseconds.
func RecordComparisonLatency(latencyMs float64) {
	globalManager.comparisonLatency.Observe(latencyMs)
}

// RecordFilteredSampleSize records the size of a quality-filtered sample.
func RecordFilteredSampleSize(n int) {
	globalManager.filteredSampleSizes.Observe(float64(n))
}

// Cache Metrics Functions.

// RecordCacheHit increments the hit counter for a named cache.
func RecordCacheHit(cache string) {
	globalManager.cacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the miss counter for a named cache.
func RecordCacheMiss(cache string) {
	globalManager.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordCacheEviction increments the capacity eviction counter for a named cache.
func RecordCacheEviction(cache string) {
	globalManager.cacheEvictions.WithLabelValues(cache).Inc()
}

// RecordCacheExpiry increments the TTL expiry counter for a named cache.
func RecordCacheExpiry(cache string) {
	globalManager.cacheExpiries.WithLabelValues(cache).Inc()
}

// Gateway / Coordinator Metrics Functions.

// RecordFetchAttempt increments the fetch attempts counter.
func RecordFetchAttempt() {
	globalManager.fetchAttempts.Inc()
}

// RecordFetchRetry increments the fetch retries counter.
func RecordFetchRetry() {
	globalManager.fetchRetries.Inc()
}

// RecordFetchFailure increments the exhausted-fetch counter.
func RecordFetchFailure() {
	globalManager.fetchFailures.Inc()
}

// RecordFetchCoalesced increments the coalesced-request counter.
func RecordFetchCoalesced() {
	globalManager.fetchCoalesced.Inc()
}

// RecordFetchLatency records gateway fetch latency in milliseconds.
func RecordFetchLatency(latencyMs float64) {
	globalManager.fetchLatency.Observe(latencyMs)
}

// UpdateBreakerState sets the breaker state gauge (0=closed, 1=half-open, 2=open).
func UpdateBreakerState(state int) {
	globalManager.breakerState.Set(float64(state))
}

// RecordBreakerTransition increments the transition counter for a target state.
func RecordBreakerTransition(to string) {
	globalManager.breakerTransitions.WithLabelValues(to).Inc()
}

// RecordBreakerShortstop increments the open-breaker rejection counter.
func RecordBreakerShortstop() {
	globalManager.breakerShortstops.Inc()
}

// Ingest Metrics Functions.

// UpdateQueueSize sets the current ingest queue depth.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured ingest queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the ingest queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the accepted-enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueEnqueueDrop increments the dropped-enqueue counter for a reason.
func RecordQueueEnqueueDrop(reason string) {
	globalManager.queueEnqueueDrops.WithLabelValues(reason).Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordIngestAccepted increments the stored-record counter.
func RecordIngestAccepted() {
	globalManager.ingestAccepted.Inc()
}

// RecordIngestDuplicate increments the duplicate-record counter.
func RecordIngestDuplicate() {
	globalManager.ingestDuplicates.Inc()
}

// RecordIngestRejected increments the rejected-record counter for a reason.
func RecordIngestRejected(reason string) {
	globalManager.ingestRejected.WithLabelValues(reason).Inc()
}

// RecordIngestLatency records per-record ingest latency in milliseconds.
func RecordIngestLatency(latencyMs float64) {
	globalManager.ingestLatency.Observe(latencyMs)
}

// UpdateStoredRecords sets the record store size gauge.
func UpdateStoredRecords(n int) {
	globalManager.storedRecords.Set(float64(n))
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
