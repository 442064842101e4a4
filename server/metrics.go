package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

/*
metrics bundles the server's Prometheus collectors.

Each Server owns a private registry so that two servers in one process
(the integration tests do this) never fight over collector names.
*/
type metrics struct {
	registry *prometheus.Registry

	connectionsTotal    prometheus.Counter
	connectionsActive   prometheus.Gauge
	connectionsRejected prometheus.Counter

	commandsTotal *prometheus.CounterVec
	parseErrors   prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		registry: prometheus.NewRegistry(),

		connectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "govault_connections_total",
			Help: "Connections accepted since start.",
		}),
		connectionsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "govault_connections_active",
			Help: "Connections currently being served.",
		}),
		connectionsRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "govault_connections_rejected_total",
			Help: "Connections closed at accept time by the max_connections cap.",
		}),
		commandsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "govault_commands_total",
			Help: "Commands executed, by verb.",
		}, []string{"verb"}),
		parseErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "govault_parse_errors_total",
			Help: "Request lines rejected by the protocol parser.",
		}),
	}

	m.registry.MustRegister(
		m.connectionsTotal,
		m.connectionsActive,
		m.connectionsRejected,
		m.commandsTotal,
		m.parseErrors,
	)
	return m
}

/*
handler exposes the registry for an HTTP metrics listener.
*/
func (m *metrics) handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
	return mux
}
