package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Events = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "inputbridge_events_total",
			Help: "Key events read from input devices, by match result.",
		},
		[]string{"result"},
	)
	ActionsEnqueued = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inputbridge_actions_enqueued_total",
		Help: "Actions placed on the outbound queue.",
	})
	ActionsDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inputbridge_actions_dropped_total",
		Help: "Actions dropped because the outbound queue had no consumer.",
	})
	ActionsSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inputbridge_actions_sent_total",
		Help: "Actions written to the server connection.",
	})
	ConnectionAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inputbridge_connection_attempts_total",
		Help: "Connection attempts to the server.",
	})
	ConnectionFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inputbridge_connection_failures_total",
		Help: "Connections that failed or ended with an error.",
	})
	Connected = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inputbridge_connected",
		Help: "1 while a server connection is established.",
	})
	DevicesActive = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "inputbridge_devices_active",
		Help: "Input devices with a running listener.",
	})
)

// Event match results
const (
	ResultMatched   = "matched"
	ResultUnmatched = "unmatched"
	ResultIgnored   = "ignored"
)

func init() {
	prometheus.MustRegister(
		Events,
		ActionsEnqueued,
		ActionsDropped,
		ActionsSent,
		ConnectionAttempts,
		ConnectionFailures,
		Connected,
		DevicesActive,
	)
}

// Handler serves the default registry in the Prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
