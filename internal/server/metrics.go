package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus instruments for the match server.
type Metrics struct {
	registry *prometheus.Registry

	ActiveGames      prometheus.Gauge
	ConnectedClients prometheus.Gauge
	GamesCreated     prometheus.Counter
	Actions          *prometheus.CounterVec
	InputResponses   *prometheus.CounterVec
	Errors           *prometheus.CounterVec
}

// NewMetrics registers the server instruments on a private registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ActiveGames: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mars_active_games",
			Help: "Number of matches currently hosted.",
		}),
		ConnectedClients: factory.NewGauge(prometheus.GaugeOpts{
			Name: "mars_connected_clients",
			Help: "Number of connected WebSocket clients.",
		}),
		GamesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "mars_games_created_total",
			Help: "Total matches created.",
		}),
		Actions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mars_actions_total",
			Help: "Player actions by type and result.",
		}, []string{"type", "result"}),
		InputResponses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mars_input_responses_total",
			Help: "Input responses by result.",
		}, []string{"result"}),
		Errors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mars_errors_total",
			Help: "Errors surfaced to clients, by code.",
		}, []string{"code"}),
	}
}

// Handler serves the /metrics endpoint for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
