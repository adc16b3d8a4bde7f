// Package metrics provides Prometheus instrumentation for the dashboard:
// remote API calls, chat routing and the auth session state.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APIRequestsTotal counts remote API calls by endpoint and outcome
	// ("ok", "unauthenticated", "session_expired", "timeout", "failed", "malformed", "error").
	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "propdash_api_requests_total",
		Help: "Remote API requests by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	// APIRequestDuration records remote API latency in seconds.
	APIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "propdash_api_request_duration_seconds",
		Help:    "Remote API request latency in seconds",
		Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	}, []string{"endpoint"})

	// ChatMessagesTotal counts submitted chat messages by route ("finance", "general", "rejected").
	ChatMessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "propdash_chat_messages_total",
		Help: "Chat messages submitted, by route",
	}, []string{"route"})

	// ChatSessions tracks the number of live chat sessions.
	ChatSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "propdash_chat_sessions",
		Help: "Current number of chat sessions",
	})

	// ChatConnections tracks open chat WebSocket connections.
	ChatConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "propdash_chat_connections",
		Help: "Current number of chat WebSocket connections",
	})

	// Authenticated is 1 while the dashboard holds a valid session.
	Authenticated = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "propdash_authenticated",
		Help: "1 when the dashboard is authenticated against the API",
	})
)

func init() {
	prometheus.MustRegister(
		APIRequestsTotal,
		APIRequestDuration,
		ChatMessagesTotal,
		ChatSessions,
		ChatConnections,
		Authenticated,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
