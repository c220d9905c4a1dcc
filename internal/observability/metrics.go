package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	toolRequestsTotal  *prometheus.CounterVec
	toolLatencySeconds *prometheus.HistogramVec
	toolErrorsTotal    *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used for tool observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		toolRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tool_requests_total",
			Help: "Total number of tool API requests served.",
		}, []string{"method", "route", "status"})

		toolLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tool_latency_seconds",
			Help:    "Latency distribution for tool API requests.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		}, []string{"method", "route"})

		toolErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tool_errors_total",
			Help: "Total number of error responses returned by tool endpoints.",
		}, []string{"method", "route", "status"})

		prometheus.MustRegister(toolRequestsTotal, toolLatencySeconds, toolErrorsTotal)
	})
}

// ToolRequests exposes the counter for tool requests.
func ToolRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return toolRequestsTotal
}

// ToolLatency exposes the latency histogram for tool requests.
func ToolLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return toolLatencySeconds
}

// ToolErrors exposes the counter for tool error responses.
func ToolErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return toolErrorsTotal
}
