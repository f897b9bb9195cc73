// Package metrics exposes Prometheus metrics for proxied calls and
// configuration changes.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "relay"

// Collector owns a private registry so tests and multiple servers never
// collide on the global one.
type Collector struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	configUpdates   *prometheus.CounterVec
}

// NewCollector creates and registers the relay metrics.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "proxy",
				Name:      "requests_total",
				Help:      "Total number of proxied upstream calls by method and outcome kind",
			},
			[]string{"method", "kind"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "proxy",
				Name:      "request_duration_seconds",
				Help:      "Duration of proxied upstream calls in seconds",
				// Bounded above by the 30s client timeout
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"method"},
		),

		configUpdates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "config",
				Name:      "updates_total",
				Help:      "Total number of upstream base URL updates by source",
			},
			[]string{"source"},
		),
	}

	c.registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.configUpdates,
	)

	return c
}

// RecordRequest records one proxied call. Safe on a nil Collector.
func (c *Collector) RecordRequest(method, kind string, duration time.Duration) {
	if c == nil {
		return
	}

	c.requestsTotal.WithLabelValues(method, kind).Inc()
	c.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// RecordConfigUpdate records a base URL change from the given source
// ("load", "save", "reset", "watch"). Safe on a nil Collector.
func (c *Collector) RecordConfigUpdate(source string) {
	if c == nil {
		return
	}

	c.configUpdates.WithLabelValues(source).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
