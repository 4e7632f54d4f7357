package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	submissionsTotal     *prometheus.CounterVec
	evaluationsTotal     *prometheus.CounterVec
	evaluatorLatency     *prometheus.HistogramVec
	dashboardCacheLookup *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the service.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackjudge_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hackjudge_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackjudge_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackjudge_submissions_total",
			Help: "Submissions accepted for evaluation.",
		}, []string{"dispatch"})

		evaluationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackjudge_evaluations_total",
			Help: "Evaluations applied, by resulting status.",
		}, []string{"status"})

		evaluatorLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "hackjudge_evaluator_latency_seconds",
			Help:    "Latency of AI evaluator calls.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60},
		}, []string{"provider", "outcome"})

		dashboardCacheLookup = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "hackjudge_dashboard_cache_lookups_total",
			Help: "Dashboard cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			submissionsTotal,
			evaluationsTotal,
			evaluatorLatency,
			dashboardCacheLookup,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// SubmissionsTotal exposes the counter of stored submissions.
func SubmissionsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// EvaluationsTotal exposes the counter of applied evaluations.
func EvaluationsTotal() *prometheus.CounterVec {
	RegisterMetrics()
	return evaluationsTotal
}

// EvaluatorLatency exposes the AI call latency histogram.
func EvaluatorLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return evaluatorLatency
}

// DashboardCacheLookups exposes the dashboard cache hit/miss counter.
func DashboardCacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return dashboardCacheLookup
}
