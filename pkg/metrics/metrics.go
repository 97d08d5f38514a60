// Package metrics provides Prometheus metrics for the resumatch service.
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

// Manager manages all Prometheus metrics for the resumatch service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Core business metrics
	resumesProcessed       prometheus.Counter
	recommendationsServed  prometheus.Counter
	extractionErrors       prometheus.Counter
	embeddingLatency       prometheus.Histogram
	inferenceLatency       prometheus.Histogram
	predictedCategories    *prometheus.CounterVec

	// Model lifecycle metrics
	trainingRuns     prometheus.Counter
	trainingDuration prometheus.Histogram
	modelLoaded      prometheus.Gauge

	// Catalog and cache metrics
	catalogSize        prometheus.Gauge
	embeddingCacheSize prometheus.Gauge
	embeddingCacheHits prometheus.Counter

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System performance metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "resumatch",
		subsystem:        "recommender",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	// Apply all options
	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	factory := promauto.With(m.registry)

	m.resumesProcessed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "resumes_processed_total",
		Help:      "Total number of resumes processed end to end.",
	})
	m.recommendationsServed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recommendations_served_total",
		Help:      "Total number of recommendation rows returned to clients.",
	})
	m.extractionErrors = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "extraction_errors_total",
		Help:      "Total number of resume text extraction failures.",
	})
	m.embeddingLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "embedding_latency_ms",
		Help:      "Latency of embedding generation in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.inferenceLatency = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inference_latency_ms",
		Help:      "Latency of model inference (classifier + matcher) in milliseconds.",
		Buckets:   m.histogramBuckets,
	})
	m.predictedCategories = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predicted_categories_total",
		Help:      "Count of category predictions by predicted label.",
	}, []string{"category"})

	m.trainingRuns = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_runs_total",
		Help:      "Number of first-run training jobs executed.",
	})
	m.trainingDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_duration_seconds",
		Help:      "Duration of model training runs in seconds.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
	m.modelLoaded = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "model_loaded",
		Help:      "1 when trained model artifacts are loaded, 0 otherwise.",
	})

	m.catalogSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "catalog_size",
		Help:      "Number of job postings loaded in the catalog.",
	})
	m.embeddingCacheSize = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "embedding_cache_size",
		Help:      "Number of entries in the embedding cache.",
	})
	m.embeddingCacheHits = factory.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "embedding_cache_hits_total",
		Help:      "Number of embedding cache hits.",
	})

	m.httpRequests = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method and status code.",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = factory.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request duration in milliseconds.",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryUsage = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Current allocated memory in bytes.",
	})
	m.systemGoroutineCount = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current number of goroutines.",
	})
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package-level helpers delegating to the global manager.

// RecordResumeProcessed increments the processed-resume counter.
func RecordResumeProcessed() { globalManager.resumesProcessed.Inc() }

// RecordRecommendationsServed adds the number of rows returned to a client.
func RecordRecommendationsServed(n int) {
	globalManager.recommendationsServed.Add(float64(n))
}

// RecordExtractionError increments the extraction failure counter.
func RecordExtractionError() { globalManager.extractionErrors.Inc() }

// RecordEmbeddingLatency observes embedding latency in milliseconds.
func RecordEmbeddingLatency(ms float64) { globalManager.embeddingLatency.Observe(ms) }

// RecordInferenceLatency observes inference latency in milliseconds.
func RecordInferenceLatency(ms float64) { globalManager.inferenceLatency.Observe(ms) }

// RecordPredictedCategory counts a category prediction.
func RecordPredictedCategory(category string) {
	globalManager.predictedCategories.WithLabelValues(category).Inc()
}

// RecordTrainingRun increments the training-run counter.
func RecordTrainingRun() { globalManager.trainingRuns.Inc() }

// RecordTrainingDuration observes a training run duration in seconds.
func RecordTrainingDuration(seconds float64) { globalManager.trainingDuration.Observe(seconds) }

// UpdateModelLoaded flags whether model artifacts are loaded.
func UpdateModelLoaded(loaded bool) {
	if loaded {
		globalManager.modelLoaded.Set(1)
		return
	}
	globalManager.modelLoaded.Set(0)
}

// UpdateCatalogSize sets the catalog size gauge.
func UpdateCatalogSize(n int) { globalManager.catalogSize.Set(float64(n)) }

// UpdateEmbeddingCacheSize sets the embedding cache size gauge.
func UpdateEmbeddingCacheSize(n int) { globalManager.embeddingCacheSize.Set(float64(n)) }

// RecordEmbeddingCacheHit increments the cache-hit counter.
func RecordEmbeddingCacheHit() { globalManager.embeddingCacheHits.Inc() }

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration observes an HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// UpdateSystemMemoryUsage sets the allocated-memory gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(n int) {
	globalManager.systemGoroutineCount.Set(float64(n))
}
