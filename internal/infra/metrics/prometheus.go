package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Transcription
	Transcriptions        *prometheus.CounterVec
	TranscriptionDuration prometheus.Histogram
	TranscriptionBytes    prometheus.Histogram

	// List store
	StoreOperations *prometheus.CounterVec
	ItemsAdded      prometheus.Counter
	ItemsRemoved    prometheus.Counter
}

func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shoplist_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "shoplist_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.ExponentialBuckets(0.005, 2, 14), // 5ms to ~41s
		}, []string{"method", "route"}),

		Transcriptions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shoplist_transcriptions_total",
			Help: "Transcription requests by result",
		}, []string{"result"}),
		TranscriptionDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "shoplist_transcription_duration_seconds",
			Help:    "Time spent waiting for the transcription provider",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~3.4m
		}),
		TranscriptionBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "shoplist_transcription_audio_bytes",
			Help:    "Size of audio clips sent for transcription",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KiB to ~256MiB
		}),

		StoreOperations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "shoplist_store_operations_total",
			Help: "List store operations by operation and result",
		}, []string{"operation", "result"}),
		ItemsAdded: factory.NewCounter(prometheus.CounterOpts{
			Name: "shoplist_items_added_total",
			Help: "Items appended to the shopping list",
		}),
		ItemsRemoved: factory.NewCounter(prometheus.CounterOpts{
			Name: "shoplist_items_removed_total",
			Help: "Remove requests applied to the shopping list",
		}),
	}
}

// Handler serves the exposition format for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordHTTPRequest(method, route, status string, seconds float64) {
	m.HTTPRequests.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(seconds)
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}
