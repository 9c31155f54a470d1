package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	tryOnOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wardrobe",
			Subsystem: "tryon",
			Name:      "outcomes_total",
			Help:      "Terminal try-on outcomes by state and error kind.",
		},
		[]string{"state", "kind"},
	)

	tryOnDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wardrobe",
			Subsystem: "tryon",
			Name:      "attempt_duration_seconds",
			Help:      "Duration of try-on attempts from submit to terminal state.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"state"},
	)

	relayRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wardrobe",
			Subsystem: "relay",
			Name:      "requests_total",
			Help:      "Requests forwarded to backend functions by upstream status.",
		},
		[]string{"function", "status"},
	)
)

func init() {
	Registry.MustRegister(tryOnOutcomes, tryOnDuration, relayRequests)
}

// Handler exposes the registry over HTTP.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordTryOn counts a terminal try-on outcome. kind is empty unless the
// outcome is a failure.
func RecordTryOn(state, kind string, seconds float64) {
	if kind == "" {
		kind = "none"
	}
	tryOnOutcomes.WithLabelValues(state, kind).Inc()
	tryOnDuration.WithLabelValues(state).Observe(seconds)
}

// RecordRelay counts a forwarded request. status 0 means the upstream was
// unreachable.
func RecordRelay(function string, status int) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status/100) + "xx"
	}
	relayRequests.WithLabelValues(function, label).Inc()
}
