package web

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rangosemfila/consumo/internal/report"
	"github.com/rangosemfila/consumo/internal/view"
)

// Metrics holds the page server's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	renders       *prometheus.CounterVec
}

// NewMetrics creates the collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		fetches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consumo_report_fetches_total",
			Help: "Consumption report fetches by outcome.",
		}, []string{"outcome"}),
		fetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "consumo_report_fetch_duration_seconds",
			Help:    "Latency of consumption report fetches.",
			Buckets: prometheus.DefBuckets,
		}),
		renders: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "consumo_page_renders_total",
			Help: "Rendered report pages by view state.",
		}, []string{"state"}),
	}
}

// Observe records a fetch event. It satisfies report.Observer.
func (m *Metrics) Observe(ev report.FetchEvent) {
	m.fetches.WithLabelValues(ev.Kind.String()).Inc()
	m.fetchDuration.Observe(ev.Duration.Seconds())
}

func (m *Metrics) rendered(state view.State) {
	m.renders.WithLabelValues(string(state)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
