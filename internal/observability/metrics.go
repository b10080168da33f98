package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce          sync.Once
	apiRequestsTotal      *prometheus.CounterVec
	apiLatencySeconds     *prometheus.HistogramVec
	apiErrorsTotal        *prometheus.CounterVec
	attemptUpsertsTotal   *prometheus.CounterVec
	xpGrantsTotal         prometheus.Counter
	sweeperSweptTotal     prometheus.Counter
	sweeperRowErrorsTotal prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the engine.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		attemptUpsertsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "attempt_upserts_total",
			Help: "Total attempt upserts processed, labelled by resulting status.",
		}, []string{"status"})

		xpGrantsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "xp_grants_total",
			Help: "Total first-completion XP grants awarded.",
		})

		sweeperSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deadline_sweeper_swept_total",
			Help: "Total attempts transitioned to PAST_DUE by the sweeper.",
		})

		sweeperRowErrorsTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "deadline_sweeper_row_errors_total",
			Help: "Total attempt rows the sweeper failed to process.",
		})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			attemptUpsertsTotal,
			xpGrantsTotal,
			sweeperSweptTotal,
			sweeperRowErrorsTotal,
		)
	})
}

// APIRequests exposes the counter for API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// AttemptUpserts exposes the counter for attempt upserts.
func AttemptUpserts() *prometheus.CounterVec {
	RegisterMetrics()
	return attemptUpsertsTotal
}

// XPGrants exposes the counter for XP grants.
func XPGrants() prometheus.Counter {
	RegisterMetrics()
	return xpGrantsTotal
}

// SweeperSwept exposes the counter for swept attempts.
func SweeperSwept() prometheus.Counter {
	RegisterMetrics()
	return sweeperSweptTotal
}

// SweeperRowErrors exposes the counter for sweeper row failures.
func SweeperRowErrors() prometheus.Counter {
	RegisterMetrics()
	return sweeperRowErrorsTotal
}
