package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every policygen collector. A private registry keeps tests
// and embedded servers from colliding on the global one.
var Registry = prometheus.NewRegistry()

var (
	// Flows
	FlowRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policygen_flow_requests_total",
			Help: "Flow invocations by flow name",
		},
		[]string{"flow"},
	)
	FlowFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policygen_flow_failures_total",
			Help: "Failed flow invocations by flow name and failure code",
		},
		[]string{"flow", "code"},
	)
	FlowDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "policygen_flow_duration_seconds",
			Help:    "Duration of flow invocations, generator wait included",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 10), // 0.25s..128s
		},
		[]string{"flow"},
	)

	// Action layer
	ActionSubstitutes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policygen_action_substitutes_total",
			Help: "Times an action returned a substitute value instead of a result",
		},
		[]string{"action"},
	)
	ActionRetries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policygen_action_retries_total",
			Help: "Retries of generator-unavailable failures by action",
		},
		[]string{"action"},
	)

	// HTTP
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policygen_http_requests_total",
			Help: "HTTP requests by route and status",
		},
		[]string{"route", "status"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),

		FlowRequests,
		FlowFailures,
		FlowDurationSeconds,

		ActionSubstitutes,
		ActionRetries,

		HTTPRequests,
	)
}

// Handler serves the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Flows
func IncFlowRequest(flow string) {
	FlowRequests.WithLabelValues(flow).Inc()
}

func IncFlowFailure(flow, code string) {
	FlowFailures.WithLabelValues(flow, code).Inc()
}

func ObserveFlowDuration(flow string, d time.Duration) {
	FlowDurationSeconds.WithLabelValues(flow).Observe(d.Seconds())
}

// Actions
func IncActionSubstitute(action string) {
	ActionSubstitutes.WithLabelValues(action).Inc()
}

func IncActionRetry(action string) {
	ActionRetries.WithLabelValues(action).Inc()
}

// HTTP
func IncHTTPRequest(route, status string) {
	HTTPRequests.WithLabelValues(route, status).Inc()
}
