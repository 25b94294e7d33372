// Package metrics holds the Prometheus collectors for the web shell.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "auction"

// Metrics is the set of collectors exposed at /metrics. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	flashWritten    *prometheus.CounterVec
	flashConsumed   *prometheus.CounterVec
	idleExpired     prometheus.Counter
	pagesRendered   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New registers the collectors on a fresh registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		flashWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flash_written_total",
			Help:      "Flash messages stored, by category.",
		}, []string{"category"}),
		flashConsumed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flash_consumed_total",
			Help:      "Flash messages delivered to a page render, by category.",
		}, []string{"category"}),
		idleExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_idle_expired_total",
			Help:      "Sessions revoked by the server idle backstop.",
		}),
		pagesRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_rendered_total",
			Help:      "HTML pages rendered, by layout.",
		}, []string{"layout"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "status"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.flashWritten,
		m.flashConsumed,
		m.idleExpired,
		m.pagesRendered,
		m.requestDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) FlashWritten(category string) {
	if m == nil {
		return
	}
	m.flashWritten.WithLabelValues(category).Inc()
}

func (m *Metrics) FlashConsumed(category string) {
	if m == nil {
		return
	}
	m.flashConsumed.WithLabelValues(category).Inc()
}

func (m *Metrics) SessionIdleExpired() {
	if m == nil {
		return
	}
	m.idleExpired.Inc()
}

func (m *Metrics) PageRendered(layout string) {
	if m == nil {
		return
	}
	m.pagesRendered.WithLabelValues(layout).Inc()
}

// ObserveRequest records one finished HTTP request.
func (m *Metrics) ObserveRequest(method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, strconv.Itoa(status)).Observe(d.Seconds())
}
