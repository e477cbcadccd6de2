package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Analysis metrics
	AnalysisRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vega_analysis_requests_total",
			Help: "Total number of ticker analysis requests",
		},
		[]string{"status"}, // status: success|no_data|error
	)

	AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vega_analysis_duration_seconds",
			Help:    "Ticker analysis duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"ticker"},
	)

	// Provider metrics
	ProviderRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vega_provider_requests_total",
			Help: "Total number of market data provider requests",
		},
		[]string{"endpoint", "status"}, // status: ok|auth|rate_limited|unavailable|not_found|error
	)

	ProviderLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vega_provider_latency_seconds",
			Help:    "Market data provider request latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"endpoint"},
	)

	// Cache metrics
	CacheOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vega_cache_operations_total",
			Help: "Total market data cache operations",
		},
		[]string{"kind", "result"}, // kind: quote|chain, result: hit|miss|error
	)

	// Tracking metrics
	TrackedActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "vega_tracked_suggestions_active",
			Help: "Current number of tracked suggestions in ACTIVE status",
		},
	)

	// Database metrics
	DBQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vega_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"}, // status: success|error
	)

	DBQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vega_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"operation"},
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(AnalysisRequests)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(ProviderRequests)
	prometheus.MustRegister(ProviderLatency)
	prometheus.MustRegister(CacheOps)
	prometheus.MustRegister(TrackedActive)
	prometheus.MustRegister(DBQueries)
	prometheus.MustRegister(DBQueryDuration)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordAnalysis records one analysis request
func RecordAnalysis(ticker string, duration time.Duration, status string) {
	AnalysisRequests.WithLabelValues(status).Inc()
	AnalysisDuration.WithLabelValues(ticker).Observe(duration.Seconds())
}

// RecordDBQuery records one repository query
func RecordDBQuery(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	DBQueries.WithLabelValues(operation, status).Inc()
	DBQueryDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
