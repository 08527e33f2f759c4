// Package metrics provides Prometheus metrics for the CareMate front-end.
// HTTP metrics:
//   - http_request_total: Counter with method, path, and status labels
//   - http_request_duration_seconds: Histogram with method and path labels
//   - http_request_in_flight: Gauge for concurrent requests
//
// Application metrics:
//   - caremate_form_actions_total: Counter with page, action, and outcome labels
//   - caremate_mounted_pages: Gauge of visitors holding a mounted page
//   - caremate_chat_ready: Gauge, 1 when the chat widget can be opened
//   - caremate_chat_opens_total: Counter with kind and outcome labels
//
// All metrics are registered with the Prometheus default registry during
// package initialization.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Form action outcomes
const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
	OutcomeStale    = "stale"
)

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
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
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
			Help: "Total number of rate limiter buckets (IPs seen in last ~5 minutes)",
		},
	)

	FormActionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caremate_form_actions_total",
			Help: "Form actions posted by visitors",
		},
		[]string{"page", "action", "outcome"},
	)

	MountedPages = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "caremate_mounted_pages",
			Help: "Visitors currently holding a mounted page",
		},
	)

	ChatReady = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "caremate_chat_ready",
			Help: "1 when the chat widget can be opened",
		},
	)

	ChatOpensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "caremate_chat_opens_total",
			Help: "Chat button presses by widget kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestTotals)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(HTTPRequestInFlight)
	prometheus.MustRegister(RateLimiterBucketsTotal)
	prometheus.MustRegister(FormActionsTotal)
	prometheus.MustRegister(MountedPages)
	prometheus.MustRegister(ChatReady)
	prometheus.MustRegister(ChatOpensTotal)
}

// RecordFormAction counts one form post
func RecordFormAction(page, action, outcome string) {
	FormActionsTotal.WithLabelValues(page, action, outcome).Inc()
}

// SetChatReady mirrors the widget readiness flag
func SetChatReady(ready bool) {
	if ready {
		ChatReady.Set(1)
		return
	}
	ChatReady.Set(0)
}
