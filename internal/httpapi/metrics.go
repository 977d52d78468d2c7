package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

const metricsNamespace = "bookcatalog"

// Metrics counts requests served since startup on a private Prometheus
// registry. The JSON snapshot is read back from the same collectors.
type Metrics struct {
	registry *prometheus.Registry
	requests *prometheus.CounterVec
	errors   prometheus.Counter
	duration prometheus.Histogram
}

// MetricsSnapshot is a point-in-time view of Metrics
type MetricsSnapshot struct {
	RequestCount      int64   `json:"request_count"`
	ErrorCount        int64   `json:"error_count"`
	ErrorRate         float64 `json:"error_rate"`
	AvgResponseTimeMs float64 `json:"avg_response_time_ms"`
}

// NewMetrics creates zeroed collectors registered on their own registry
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests served, by status code.",
		}, []string{"code"}),
		errors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_errors_total",
			Help:      "HTTP requests answered with a status of 400 or above.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	m.registry.MustRegister(m.requests, m.errors, m.duration)
	return m
}

// Observe records one finished request. Statuses >= 400 count as errors.
func (m *Metrics) Observe(status int, elapsed time.Duration) {
	m.requests.WithLabelValues(strconv.Itoa(status)).Inc()
	m.duration.Observe(elapsed.Seconds())
	if status >= 400 {
		m.errors.Inc()
	}
}

// Handler serves the collectors in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Snapshot returns the current counters
func (m *Metrics) Snapshot() MetricsSnapshot {
	var hist, errs dto.Metric
	if err := m.duration.Write(&hist); err != nil {
		return MetricsSnapshot{}
	}
	if err := m.errors.Write(&errs); err != nil {
		return MetricsSnapshot{}
	}

	snap := MetricsSnapshot{
		RequestCount: int64(hist.GetHistogram().GetSampleCount()),
		ErrorCount:   int64(errs.GetCounter().GetValue()),
	}
	if snap.RequestCount > 0 {
		snap.ErrorRate = float64(snap.ErrorCount) / float64(snap.RequestCount)
		snap.AvgResponseTimeMs = hist.GetHistogram().GetSampleSum() / float64(snap.RequestCount) * 1000
	}
	return snap
}
