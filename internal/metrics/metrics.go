// Package metrics exposes prometheus counters and gauges for the matching
// engine: orders accepted, trades executed, and per-book depth. Each
// Metrics instance owns its own registry so tests can build one without
// touching global state.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vantage/internal/domain"
)

// Metrics holds the counters/gauges the handler feeds.
type Metrics struct {
	registry *prometheus.Registry

	ordersTotal *prometheus.CounterVec
	tradesTotal *prometheus.CounterVec
	bookDepth   *prometheus.GaugeVec
}

// New builds a Metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		ordersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vantage_orders_total",
			Help: "Total orders accepted by the matching engine, by symbol and side.",
		}, []string{"symbol", "side"}),
		tradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "vantage_trades_total",
			Help: "Total trades executed, by symbol.",
		}, []string{"symbol"}),
		bookDepth: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vantage_book_depth_levels",
			Help: "Resting price level count, by symbol and side.",
		}, []string{"symbol", "side"}),
	}

	reg.MustRegister(m.ordersTotal, m.tradesTotal, m.bookDepth)
	return m
}

// ObserveOrder records one accepted order for symbol/side.
func (m *Metrics) ObserveOrder(symbol string, side domain.Side) {
	m.ordersTotal.WithLabelValues(symbol, side.String()).Inc()
}

// ObserveTrades records n trades executed for symbol.
func (m *Metrics) ObserveTrades(symbol string, n int) {
	if n <= 0 {
		return
	}
	m.tradesTotal.WithLabelValues(symbol).Add(float64(n))
}

// SetBookDepth records the current resting level count for symbol/side.
func (m *Metrics) SetBookDepth(symbol, side string, levels int) {
	m.bookDepth.WithLabelValues(symbol, side).Set(float64(levels))
}

// Handler exposes the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
