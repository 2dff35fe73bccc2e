package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce        sync.Once
	httpRequestsTotal   *prometheus.CounterVec
	httpLatencySeconds  *prometheus.HistogramVec
	httpErrorsTotal     *prometheus.CounterVec
	claimsSubmitted     prometheus.Counter
	claimDecisions      *prometheus.CounterVec
	documentRejections  *prometheus.CounterVec
	reportsGenerated    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "claims_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		claimsSubmitted = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "claims_submitted_total",
			Help: "Total number of claims submitted by lecturers.",
		})

		claimDecisions = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_decisions_total",
			Help: "Total number of review decisions recorded, by outcome.",
		}, []string{"status"})

		documentRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_document_rejections_total",
			Help: "Total number of document uploads rejected, by reason.",
		}, []string{"reason"})

		reportsGenerated = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claims_reports_generated_total",
			Help: "Total number of reports generated, by output format.",
		}, []string{"format"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			claimsSubmitted,
			claimDecisions,
			documentRejections,
			reportsGenerated,
		)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// ClaimsSubmitted exposes the counter for submitted claims.
func ClaimsSubmitted() prometheus.Counter {
	RegisterMetrics()
	return claimsSubmitted
}

// ClaimDecisions exposes the counter for review decisions.
func ClaimDecisions() *prometheus.CounterVec {
	RegisterMetrics()
	return claimDecisions
}

// DocumentRejections exposes the counter for rejected document uploads.
func DocumentRejections() *prometheus.CounterVec {
	RegisterMetrics()
	return documentRejections
}

// ReportsGenerated exposes the counter for generated reports.
func ReportsGenerated() *prometheus.CounterVec {
	RegisterMetrics()
	return reportsGenerated
}
