package services

import (
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CrowderSoup/zenboard/board"
)

// Dispatch outcomes.
const (
	OutcomeApplied        = "applied"
	OutcomeNotFound       = "not_found"
	OutcomeInvalid        = "invalid"
	OutcomeNotPersisted   = "not_persisted"
	OutcomeInternalFailed = "error"
)

// Metrics exposes board counters on a private registry.
type Metrics struct {
	registry *prometheus.Registry
	actions  *prometheus.CounterVec
	lists    prometheus.Gauge
	cards    prometheus.Gauge
	clients  prometheus.GaugeFunc
}

// NewMetrics registers the board collectors. clients, when non-nil, reports
// the number of connected WebSocket clients at scrape time.
func NewMetrics(clients func() int) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "zenboard",
			Name:      "actions_total",
			Help:      "Board actions dispatched, by action type and outcome.",
		}, []string{"action", "outcome"}),
		lists: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zenboard",
			Name:      "lists",
			Help:      "Lists on the board.",
		}),
		cards: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "zenboard",
			Name:      "cards",
			Help:      "Cards on the board.",
		}),
	}
	m.registry.MustRegister(m.actions, m.lists, m.cards)

	if clients != nil {
		m.clients = prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "zenboard",
			Name:      "websocket_clients",
			Help:      "Connected WebSocket clients.",
		}, func() float64 { return float64(clients()) })
		m.registry.MustRegister(m.clients)
	}

	return m
}

// ObserveDispatch counts one dispatch attempt.
func (m *Metrics) ObserveDispatch(action string, err error) {
	if action == "" {
		action = "unknown"
	}
	m.actions.WithLabelValues(action, Outcome(err)).Inc()
}

// ObserveViews updates the board size gauges.
func (m *Metrics) ObserveViews(v board.Views) {
	m.lists.Set(float64(len(v.Lists)))
	m.cards.Set(float64(len(v.Cards)))
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry is exposed for tests and for callers adding their own collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Outcome classifies a Dispatch error.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeApplied
	case errors.Is(err, board.ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, board.ErrValidation):
		return OutcomeInvalid
	case errors.Is(err, board.ErrPersistence):
		return OutcomeNotPersisted
	default:
		return OutcomeInternalFailed
	}
}
