package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "ppt"

// Upload outcomes used as the "result" label.
const (
	uploadResultOK          = "ok"
	uploadResultNoField     = "no_file_field"
	uploadResultUploadError = "upload_error"
	uploadResultMoveFailed  = "move_failed"
)

// Metrics holds the server's Prometheus collectors. Each Server owns its
// own registry so tests can build servers side by side.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal  *prometheus.CounterVec
	uploadsTotal   *prometheus.CounterVec
	uploadBytes    prometheus.Counter
	uploadDuration prometheus.Histogram
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics(build BuildInfo) *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by status code.",
		}, []string{"code"}),
		uploadsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "uploads_total",
			Help:      "Upload attempts by outcome.",
		}, []string{"result"}),
		uploadBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "upload_bytes_total",
			Help:      "Bytes stored by successful uploads.",
		}),
		uploadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "upload_duration_seconds",
			Help:      "Time from request start to stored file for successful uploads.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	info := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   metricsNamespace,
		Name:        "info",
		Help:        "Build information.",
		ConstLabels: prometheus.Labels{"version": build.Version, "commit": build.Commit},
	})
	info.Set(1)

	reg.MustRegister(
		m.requestsTotal,
		m.uploadsTotal,
		m.uploadBytes,
		m.uploadDuration,
		info,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// RecordRequest records an HTTP request
func (m *Metrics) RecordRequest(statusCode int) {
	m.requestsTotal.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordUpload records a stored file.
func (m *Metrics) RecordUpload(bytes int64, duration time.Duration) {
	m.uploadsTotal.WithLabelValues(uploadResultOK).Inc()
	m.uploadBytes.Add(float64(bytes))
	m.uploadDuration.Observe(duration.Seconds())
}

// RecordUploadError records a rejected or failed upload.
func (m *Metrics) RecordUploadError(result string) {
	m.uploadsTotal.WithLabelValues(result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
