package infra

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a private Prometheus registry. All recording methods are
// nil-safe so components can be built without metrics (METRICS_ENABLED=false
// and tests).
type Metrics struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
	jobs         *prometheus.CounterVec
	outbox       prometheus.Counter
	reportes     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pasteleria",
		Name:      "http_requests_total",
		Help:      "HTTP requests by route and status code.",
	}, []string{"method", "route", "status"})

	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "pasteleria",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	m.jobs = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pasteleria",
		Name:      "worker_jobs_total",
		Help:      "Background jobs by type and result.",
	}, []string{"type", "result"})

	m.outbox = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "pasteleria",
		Name:      "outbox_relay_delivered_total",
		Help:      "Outbox entries delivered by the periodic relay.",
	})

	m.reportes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "pasteleria",
		Name:      "reportes_caja_total",
		Help:      "Daily cash report deliveries by result.",
	}, []string{"result"})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests, m.httpDuration, m.jobs, m.outbox, m.reportes,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *Metrics) Job(jobType, result string) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(jobType, result).Inc()
}

func (m *Metrics) OutboxRelay(n int) {
	if m == nil {
		return
	}
	m.outbox.Add(float64(n))
}

func (m *Metrics) Reporte(result string) {
	if m == nil {
		return
	}
	m.reportes.WithLabelValues(result).Inc()
}
