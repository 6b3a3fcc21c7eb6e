// Package metrics provides Prometheus metrics for the narrative service.
// HTTP request metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Domain metrics cover generated narratives, group sizes, divergent case-level
// fields and ingestion failures by input source.
//
// All metrics are registered with the Prometheus default registry during package
// initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_request_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_request_in_flight",
			Help: "Current in-flight requests",
		},
	)

	RateLimiterBucketsTotal = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "rate_limiter_buckets_total",
			Help: "Total number of rate limiter buckets (clients seen since the last sweep)",
		},
	)

	NarrativesGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "narratives_generated_total",
			Help: "Total narratives generated",
		},
	)

	CaseGroupRecords = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "case_group_records",
			Help:    "Number of records per case group",
			Buckets: []float64{1, 2, 3, 5, 10, 25, 50, 100},
		},
	)

	DivergentFields = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "case_group_divergent_fields_total",
			Help: "Case-level fields whose value differs across the records of a group",
		},
	)

	IngestFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_failures_total",
			Help: "Rejected inputs by source",
		},
		[]string{"source"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(NarrativesGenerated)
	prometheus.MustRegister(CaseGroupRecords)
	prometheus.MustRegister(DivergentFields)
	prometheus.MustRegister(IngestFailures)
}
