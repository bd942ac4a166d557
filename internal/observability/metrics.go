package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kbomate_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ExternalCalls counts outbound calls by provider and outcome (ok, error).
	ExternalCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kbomate_external_calls_total",
		Help: "Outbound calls to third-party APIs",
	}, []string{"provider", "outcome"})

	// ExternalLatency records outbound call latency by provider.
	ExternalLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "kbomate_external_call_latency_seconds",
		Help:    "Latency of outbound calls to third-party APIs",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
	}, []string{"provider"})

	// MateActions counts mate board writes by action.
	MateActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kbomate_mate_actions_total",
		Help: "Mate board posts and comments written, by action",
	}, []string{"action"})

	// AdminActions counts admin console writes by panel and action.
	AdminActions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kbomate_admin_actions_total",
		Help: "Admin console mutations by panel and action",
	}, []string{"panel", "action"})

	// WebSocketConnectionsTotal is the gauge of open notification sockets.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kbomate_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped because a client send buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kbomate_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"hub", "reason"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// ObserveExternal records one outbound call.
func ObserveExternal(provider string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ExternalCalls.WithLabelValues(provider, outcome).Inc()
	ExternalLatency.WithLabelValues(provider).Observe(time.Since(start).Seconds())
}
