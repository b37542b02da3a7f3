// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// LLMRequestDuration tracks completion backend call duration.
	LLMRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_request_duration_seconds",
			Help:    "Completion backend call duration",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"provider", "status"},
	)

	// TurnsTotal tracks total turns appended.
	TurnsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "turns_appended_total",
			Help: "Total conversation turns appended",
		},
	)

	// ContextLines tracks how many lines survive context assembly.
	ContextLines = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "context_window_lines",
			Help:    "Lines in the assembled context window",
			Buckets: []float64{1, 3, 5, 11, 21, 51, 101, 201, 501},
		},
	)

	// ContextEvictionsTotal tracks turn pairs evicted during truncation.
	ContextEvictionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "context_evictions_total",
			Help: "Stored turn pairs evicted from the context window",
		},
	)

	// UploadsTotal tracks total files uploaded.
	UploadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "uploads_total",
			Help: "Total files uploaded",
		},
	)

	// StoreOpDuration tracks conversation store operation duration.
	StoreOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_op_duration_seconds",
			Help:    "Conversation store operation duration",
			Buckets: []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"op"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordLLMRequest records metrics for a completion backend call.
func RecordLLMRequest(provider, status string, duration float64) {
	LLMRequestDuration.WithLabelValues(provider, status).Observe(duration)
}

// RecordContextAssembly records the shape of an assembled context window.
func RecordContextAssembly(lines, evictedPairs int) {
	ContextLines.Observe(float64(lines))
	ContextEvictionsTotal.Add(float64(evictedPairs))
}
