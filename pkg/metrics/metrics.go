// Package metrics holds the prometheus collectors of the fetch pipeline and
// the run queue.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Attempt outcomes
const (
	OutcomeSuccess   = "success"
	OutcomeTimeout   = "timeout"
	OutcomeHTTP      = "http"
	OutcomeTransport = "transport"
)

var registry = prometheus.NewRegistry()

var (
	FetchAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glscope",
		Name:      "fetch_attempts_total",
		Help:      "HTTP attempts issued by the fetcher, by operation and outcome.",
	}, []string{"operation", "outcome"})

	FetchTerminalFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glscope",
		Name:      "fetch_terminal_failures_total",
		Help:      "Fetches that exhausted their retry budget.",
	}, []string{"operation"})

	FetchAttemptDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "glscope",
		Name:      "fetch_attempt_duration_seconds",
		Help:      "Duration of single fetch attempts.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"operation"})

	Runs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "glscope",
		Name:      "runs_total",
		Help:      "Analysis runs by final status.",
	}, []string{"status"})
)

func init() {
	registry.MustRegister(FetchAttempts, FetchTerminalFailures, FetchAttemptDuration, Runs)
}

// Registry returns the registry all collectors are registered on
func Registry() *prometheus.Registry {
	return registry
}

// Handler serves the /metrics scrape endpoint
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
