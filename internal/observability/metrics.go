package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	adminRequestsTotal  *prometheus.CounterVec
	adminLatencySeconds *prometheus.HistogramVec
	adminErrorsTotal    *prometheus.CounterVec
	reviewDecisions     *prometheus.CounterVec
	importRowsTotal     *prometheus.CounterVec
	importLatency       prometheus.Histogram
	cacheLookups        *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		adminRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_requests_total",
			Help: "Total number of admin API requests served.",
		}, []string{"method", "route", "status"})

		adminLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "admin_latency_seconds",
			Help:    "Latency distribution for admin API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		adminErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "admin_errors_total",
			Help: "Total number of error responses returned by admin endpoints.",
		}, []string{"method", "route", "status"})

		reviewDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "submission_review_decisions_total",
			Help: "Total number of review decisions by outcome.",
		}, []string{"decision"})

		importRowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "donor_import_rows_total",
			Help: "Per-row outcomes of donor imports.",
		}, []string{"outcome"})

		importLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "donor_import_duration_seconds",
			Help:    "Latency distribution for donor batch imports.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		})

		cacheLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "filter_cache_lookups_total",
			Help: "Filter option cache lookups by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			adminRequestsTotal,
			adminLatencySeconds,
			adminErrorsTotal,
			reviewDecisions,
			importRowsTotal,
			importLatency,
			cacheLookups,
		)
	})
}

// AdminRequests exposes the counter for admin requests.
func AdminRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return adminRequestsTotal
}

// AdminLatency exposes the latency histogram for admin requests.
func AdminLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return adminLatencySeconds
}

// AdminErrors exposes the counter for admin error responses.
func AdminErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return adminErrorsTotal
}

// ReviewDecisions exposes the counter for review outcomes.
func ReviewDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return reviewDecisions
}

// ImportRows exposes the per-row import outcome counter. Outcome labels are
// imported, skipped_duplicate, rejected, and failed.
func ImportRows() *prometheus.CounterVec {
	RegisterMetrics()
	return importRowsTotal
}

// ImportLatency exposes the import duration histogram.
func ImportLatency() prometheus.Histogram {
	RegisterMetrics()
	return importLatency
}

// CacheLookups exposes the filter cache lookup counter.
func CacheLookups() *prometheus.CounterVec {
	RegisterMetrics()
	return cacheLookups
}
