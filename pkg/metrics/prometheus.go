// Package metrics provides Prometheus metrics for the repstats service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager holds all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Remote source metrics
	remoteReads      *prometheus.CounterVec
	remoteReadErrors *prometheus.CounterVec
	chunksFetched    prometheus.Counter
	rowsImported     prometheus.Counter
	fetchDuration    prometheus.Histogram

	// Cache metrics
	cacheHits       *prometheus.CounterVec
	cacheMisses     prometheus.Counter
	cachePromotions prometheus.Counter
	cacheWrites     prometheus.Counter
	cacheWriteFails *prometheus.CounterVec

	// Query lifecycle metrics
	supersededResults prometheus.Counter
	refreshJobs       prometheus.Counter
	refreshFailures   prometheus.Counter
	aggregateDuration prometheus.Histogram

	// Queue and worker metrics
	queueSize     prometheus.Gauge
	queueCapacity prometheus.Gauge
	queueDrops    prometheus.Counter
	workerCount   prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global manager instance wired to a private registry so the default Go
// collector noise stays out of /healthz.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

var registry = prometheus.NewRegistry() //nolint:gochecknoglobals // singleton registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithRegistry(registry))
}

// NewManager creates a metrics manager. Metrics register on the configured
// registry at construction time.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "repstats",
		subsystem:        "engine",
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

	m.remoteReads = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "remote_reads_total",
		Help:      "Total remote range reads, by operation (range or batch)",
	}, []string{"op"})

	m.remoteReadErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "remote_read_errors_total",
		Help:      "Total failed remote range reads, by operation",
	}, []string{"op"})

	m.chunksFetched = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chunks_fetched_total",
		Help:      "Total row chunks fetched from the remote source",
	})

	m.rowsImported = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rows_imported_total",
		Help:      "Total rows imported before the today boundary",
	})

	m.fetchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "fetch_duration_seconds",
		Help:      "Duration of full row-fetch cycles",
		Buckets:   m.histogramBuckets,
	})

	m.cacheHits = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_hits_total",
		Help:      "Cache hits by tier (memory, session, persistent)",
	}, []string{"tier"})

	m.cacheMisses = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_misses_total",
		Help:      "Reads that missed every cache tier",
	})

	m.cachePromotions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_promotions_total",
		Help:      "Lower-tier hits promoted into the memory tier",
	})

	m.cacheWrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_writes_total",
		Help:      "Successful cache commits",
	})

	m.cacheWriteFails = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_write_failures_total",
		Help:      "Cache tier write failures by tier (swallowed, tier degrades to miss)",
	}, []string{"tier"})

	m.supersededResults = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "superseded_results_total",
		Help:      "Completed fetches dropped because a newer generation existed",
	})

	m.refreshJobs = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_jobs_total",
		Help:      "Refresh jobs accepted by the queue",
	})

	m.refreshFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "refresh_failures_total",
		Help:      "Refresh jobs that ended in a transport error",
	})

	m.aggregateDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "aggregate_duration_seconds",
		Help:      "Duration of bucketing plus ranking per refresh",
		Buckets:   m.histogramBuckets,
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "job_queue_size",
		Help:      "Current refresh-job queue depth",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "job_queue_capacity",
		Help:      "Configured refresh-job queue capacity",
	})

	m.queueDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "job_queue_drops_total",
		Help:      "Refresh jobs rejected due to backpressure",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Number of refresh workers",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration by endpoint, method and status code",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.systemMemoryUsage = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_usage_bytes",
		Help:      "System memory usage in bytes",
	})

	m.systemGoroutineCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutine_count",
		Help:      "Number of goroutines",
	})

	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_gc_pause_time_milliseconds",
		Help:      "GC pause time in milliseconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// Package-level recording helpers against the global manager.

func RecordRemoteRead(op string)      { globalManager.remoteReads.WithLabelValues(op).Inc() }
func RecordRemoteReadError(op string) { globalManager.remoteReadErrors.WithLabelValues(op).Inc() }
func RecordChunkFetched()             { globalManager.chunksFetched.Inc() }
func RecordRowsImported(n int)        { globalManager.rowsImported.Add(float64(n)) }
func RecordFetchDuration(sec float64) { globalManager.fetchDuration.Observe(sec) }

func RecordCacheHit(tier string)       { globalManager.cacheHits.WithLabelValues(tier).Inc() }
func RecordCacheMiss()                 { globalManager.cacheMisses.Inc() }
func RecordCachePromotion()            { globalManager.cachePromotions.Inc() }
func RecordCacheWrite()                { globalManager.cacheWrites.Inc() }
func RecordCacheWriteFail(tier string) { globalManager.cacheWriteFails.WithLabelValues(tier).Inc() }

func RecordSupersededResult()             { globalManager.supersededResults.Inc() }
func RecordRefreshJob()                   { globalManager.refreshJobs.Inc() }
func RecordRefreshFailure()               { globalManager.refreshFailures.Inc() }
func RecordAggregateDuration(sec float64) { globalManager.aggregateDuration.Observe(sec) }

func UpdateQueueSize(n int)     { globalManager.queueSize.Set(float64(n)) }
func UpdateQueueCapacity(n int) { globalManager.queueCapacity.Set(float64(n)) }
func RecordQueueDrop()          { globalManager.queueDrops.Inc() }
func UpdateWorkerCount(n int)   { globalManager.workerCount.Set(float64(n)) }

func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

func RecordHTTPRequestDuration(endpoint, method, statusCode string, sec float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(sec)
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) { globalManager.systemGCPauseTime.Observe(pauseMs) }

// GetRegistry returns the private registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return registry
}
