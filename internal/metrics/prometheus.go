package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics records probe and notification counters on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	checks        *prometheus.CounterVec
	latency       *prometheus.HistogramVec
	siteUp        *prometheus.GaugeVec
	notifications *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitewatch_checks_total",
				Help: "Total number of probes executed",
			},
			[]string{"site", "result"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sitewatch_check_latency_seconds",
				Help:    "Response latency of successful probes",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"site"},
		),
		siteUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sitewatch_site_up",
				Help: "Last known status of a site (1=up, 0=down)",
			},
			[]string{"site"},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sitewatch_notifications_total",
				Help: "Notifications attempted, by transition kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
	}
	m.Registry.MustRegister(
		m.checks, m.latency, m.siteUp, m.notifications,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) RecordCheck(site string, up bool, latencyMS float64) {
	if m == nil {
		return
	}
	result := "down"
	if up {
		result = "up"
		m.latency.WithLabelValues(site).Observe(latencyMS / 1000)
	}
	m.checks.WithLabelValues(site, result).Inc()
}

func (m *Metrics) SetSiteUp(site string, up bool) {
	if m == nil {
		return
	}
	v := 0.0
	if up {
		v = 1
	}
	m.siteUp.WithLabelValues(site).Set(v)
}

func (m *Metrics) RecordNotification(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "sent"
	if err != nil {
		outcome = "failed"
	}
	m.notifications.WithLabelValues(kind, outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
