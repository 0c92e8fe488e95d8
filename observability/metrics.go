package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// Analysis metrics
	AnalysisRequestsTotal *prometheus.CounterVec
	AnalysisDuration      *prometheus.HistogramVec
	AnalysisErrorsTotal   *prometheus.CounterVec
	SentimentLabels       *prometheus.CounterVec
	SentimentScores       *prometheus.HistogramVec
	SentimentConfidence   *prometheus.HistogramVec

	// Data source metrics
	SourceFetchesTotal *prometheus.CounterVec
	SourceErrorsTotal  *prometheus.CounterVec
	SourceDuration     *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec

	// External API metrics
	ExternalAPIRequestsTotal *prometheus.CounterVec
	ExternalAPIErrorsTotal   *prometheus.CounterVec
	ExternalAPIDuration      *prometheus.HistogramVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryTotal    *prometheus.CounterVec
	DBErrorsTotal   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Websocket metrics
	WebsocketClients *prometheus.GaugeVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// scoreBuckets are histogram buckets for sentiment score metrics (-100 to 100)
var scoreBuckets = []float64{-100, -75, -50, -25, 0, 25, 50, 75, 100}

// confidenceBuckets are histogram buckets for confidence metrics (0 to 1, eighths)
var confidenceBuckets = []float64{0, 0.125, 0.25, 0.375, 0.5, 0.625, 0.75, 0.875, 1}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		// Analysis metrics
		AnalysisRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_pulse",
				Subsystem: "analysis",
				Name:      "requests_total",
				Help:      "Total number of sentiment analysis requests",
			},
			[]string{"symbol"},
		),
		AnalysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "market_pulse",
				Subsystem: "analysis",
				Name:      "duration_seconds",
				Help:      "Duration of sentiment analysis in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"symbol", "status"},
		),
		AnalysisErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_pulse",
				Subsystem: "analysis",
				Name:      "errors_total",
				Help:      "Total number of analysis errors",
			},
			[]string{"symbol", "error_type"},
		),
		SentimentLabels: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_pulse",
				Subsystem: "sentiment",
				Name:      "labels_total",
				Help:      "Total number of sentiment results by label",
			},
			[]string{"label"},
		),
		SentimentScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "market_pulse",
				Subsystem: "sentiment",
				Name:      "score",
				Help:      "Distribution of sentiment scores",
				Buckets:   scoreBuckets,
			},
			[]string{"label"},
		),
		SentimentConfidence: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "market_pulse",
				Subsystem: "sentiment",
				Name:      "confidence",
				Help:      "Distribution of sentiment confidence levels",
				Buckets:   confidenceBuckets,
			},
			[]string{"label"},
		),

		// Data source metrics
		SourceFetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_pulse",
				Subsystem: "source",
				Name:      "fetches_total",
				Help:      "Total number of market data fetches by source",
			},
			[]string{"source"},
		),
		SourceErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_pulse",
				Subsystem: "source",
				Name:      "errors_total",
				Help:      "Total number of market data fetch errors",
			},
			[]string{"source", "error_type"},
		),
		SourceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "market_pulse",
				Subsystem: "source",
				Name:      "fetch_duration_seconds",
				Help:      "Duration of market data fetches in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"source"},
		),

		// Cache metrics
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_pulse",
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"data_type"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_pulse",
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache misses",
			},
			[]string{"data_type"},
		),

		// External API metrics
		ExternalAPIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_pulse",
				Subsystem: "external_api",
				Name:      "requests_total",
				Help:      "Total number of external API requests",
			},
			[]string{"service", "operation"},
		),
		ExternalAPIErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_pulse",
				Subsystem: "external_api",
				Name:      "errors_total",
				Help:      "Total number of external API errors",
			},
			[]string{"service", "operation", "error_type"},
		),
		ExternalAPIDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "market_pulse",
				Subsystem: "external_api",
				Name:      "duration_seconds",
				Help:      "Duration of external API calls in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"service", "operation"},
		),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "market_pulse",
				Subsystem: "database",
				Name:      "query_duration_seconds",
				Help:      "Duration of database queries in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"operation", "table"},
		),
		DBQueryTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_pulse",
				Subsystem: "database",
				Name:      "queries_total",
				Help:      "Total number of database queries",
			},
			[]string{"operation", "table"},
		),
		DBErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_pulse",
				Subsystem: "database",
				Name:      "errors_total",
				Help:      "Total number of database errors",
			},
			[]string{"operation", "table"},
		),

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_pulse",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "market_pulse",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "market_pulse",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),

		// Websocket metrics
		WebsocketClients: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "market_pulse",
				Subsystem: "websocket",
				Name:      "clients",
				Help:      "Current number of connected websocket clients",
			},
			[]string{"hub"},
		),

		// Circuit breaker metrics
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "market_pulse",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "market_pulse",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordAnalysisRequest records a sentiment analysis request
func (m *Metrics) RecordAnalysisRequest(symbol string) {
	m.AnalysisRequestsTotal.WithLabelValues(symbol).Inc()
}

// RecordAnalysisDuration records the duration of a sentiment analysis
func (m *Metrics) RecordAnalysisDuration(symbol, status string, duration time.Duration) {
	m.AnalysisDuration.WithLabelValues(symbol, status).Observe(duration.Seconds())
}

// RecordAnalysisError records an analysis error
func (m *Metrics) RecordAnalysisError(symbol, errorType string) {
	m.AnalysisErrorsTotal.WithLabelValues(symbol, errorType).Inc()
}

// RecordSentiment records a computed sentiment result
func (m *Metrics) RecordSentiment(label string, score, confidence float64) {
	m.SentimentLabels.WithLabelValues(label).Inc()
	m.SentimentScores.WithLabelValues(label).Observe(score)
	m.SentimentConfidence.WithLabelValues(label).Observe(confidence)
}

// RecordSourceFetch records a market data fetch from a source
func (m *Metrics) RecordSourceFetch(source string, duration time.Duration) {
	m.SourceFetchesTotal.WithLabelValues(source).Inc()
	m.SourceDuration.WithLabelValues(source).Observe(duration.Seconds())
}

// RecordSourceError records a market data fetch error
func (m *Metrics) RecordSourceError(source, errorType string) {
	m.SourceErrorsTotal.WithLabelValues(source, errorType).Inc()
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit(dataType string) {
	m.CacheHitsTotal.WithLabelValues(dataType).Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(dataType string) {
	m.CacheMissesTotal.WithLabelValues(dataType).Inc()
}

// RecordExternalAPIRequest records an external API request
func (m *Metrics) RecordExternalAPIRequest(service, operation string) {
	m.ExternalAPIRequestsTotal.WithLabelValues(service, operation).Inc()
}

// RecordExternalAPIError records an external API error
func (m *Metrics) RecordExternalAPIError(service, operation, errorType string) {
	m.ExternalAPIErrorsTotal.WithLabelValues(service, operation, errorType).Inc()
}

// RecordExternalAPIDuration records the duration of an external API call
func (m *Metrics) RecordExternalAPIDuration(service, operation string, duration time.Duration) {
	m.ExternalAPIDuration.WithLabelValues(service, operation).Observe(duration.Seconds())
}

// RecordDBQuery records a database query
func (m *Metrics) RecordDBQuery(operation, table string, duration time.Duration) {
	m.DBQueryTotal.WithLabelValues(operation, table).Inc()
	m.DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordDBError records a database error
func (m *Metrics) RecordDBError(operation, table string) {
	m.DBErrorsTotal.WithLabelValues(operation, table).Inc()
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetWebsocketClients sets the current websocket client count for a hub
func (m *Metrics) SetWebsocketClients(hub string, count int) {
	m.WebsocketClients.WithLabelValues(hub).Set(float64(count))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveAnalysis records the analysis duration and status
func (t *Timer) ObserveAnalysis(symbol, status string) {
	t.metrics.RecordAnalysisDuration(symbol, status, time.Since(t.start))
}

// ObserveSource records the data source fetch duration
func (t *Timer) ObserveSource(source string) {
	t.metrics.RecordSourceFetch(source, time.Since(t.start))
}

// ObserveExternalAPI records the external API duration
func (t *Timer) ObserveExternalAPI(service, operation string) {
	t.metrics.RecordExternalAPIDuration(service, operation, time.Since(t.start))
}

// ObserveDB records the database query duration
func (t *Timer) ObserveDB(operation, table string) {
	t.metrics.RecordDBQuery(operation, table, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
