// Package metrics owns the Prometheus registry and the collectors exported
// at /metrics.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the API.
	Registry = prometheus.NewRegistry()

	// HTTPRequests counts requests by method, path, and status.
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests."},
		[]string{"method", "path", "status"},
	)
	// HTTPDuration records request durations in seconds.
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{Name: "http_request_duration_seconds", Help: "HTTP request duration in seconds.", Buckets: prometheus.DefBuckets},
		[]string{"method", "path", "status"},
	)

	// OptimizeRequests counts optimization calls by the method that produced
	// the final route.
	OptimizeRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "optimize_requests_total", Help: "Optimization requests by result method."},
		[]string{"method"},
	)
	// SolverFallbacks counts silent downgrades from the solver path.
	SolverFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "optimize_solver_fallbacks_total", Help: "Optimizations that fell back from the solver to the heuristic."},
	)
	// OptimizeDuration records end-to-end optimization time in seconds.
	OptimizeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{Name: "optimize_duration_seconds", Help: "Optimization duration in seconds.", Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10}},
	)

	// WebhookDeliveries counts webhook delivery outcomes by event type and status.
	WebhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "webhook_deliveries_total", Help: "Webhook deliveries by event type and status."},
		[]string{"event_type", "status"},
	)
)

var regOnce sync.Once

// RegisterDefault registers all collectors on the package registry once.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(HTTPRequests)
		Registry.MustRegister(HTTPDuration)
		Registry.MustRegister(OptimizeRequests)
		Registry.MustRegister(SolverFallbacks)
		Registry.MustRegister(OptimizeDuration)
		Registry.MustRegister(WebhookDeliveries)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
