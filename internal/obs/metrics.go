package obs

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the storefront's prometheus collectors.
type Metrics struct {
	CartMutations  *prometheus.CounterVec
	Checkouts      *prometheus.CounterVec
	ActiveSessions prometheus.Gauge

	gatherer prometheus.Gatherer
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "cart_mutations_total",
		Help:      "Cart store mutations by operation.",
	}, []string{"op"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storefront",
		Name:      "checkouts_total",
		Help:      "Checkout attempts by result.",
	}, []string{"result"})
	sessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "storefront",
		Name:      "active_sessions",
		Help:      "Sessions currently holding a cart.",
	})
	reg.MustRegister(mutations, checkouts, sessions)
	return &Metrics{CartMutations: mutations, Checkouts: checkouts, ActiveSessions: sessions, gatherer: reg}
}

// Handler exposes the registry in the prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
