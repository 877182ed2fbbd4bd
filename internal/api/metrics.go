package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "datavault"

type metrics struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	authFailures  prometheus.Counter
	keysGenerated prometheus.Counter
	itemsExported prometheus.Counter
	itemsImported *prometheus.CounterVec
	itemsDeleted  prometheus.Counter
	itemsSeeded   prometheus.Counter
	storeItems    prometheus.Gauge
}

func newMetrics(reg *prometheus.Registry) *metrics {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	return &metrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by route and status code",
		}, []string{"route", "code"}),
		duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms to ~8s
		}, []string{"route"}),
		authFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "auth_failures_total",
			Help:      "Requests rejected for a missing or wrong API key",
		}),
		keysGenerated: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "api_keys_generated_total",
			Help:      "API keys generated",
		}),
		itemsExported: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "items_exported_total",
			Help:      "Records written into export bundles",
		}),
		itemsImported: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "items_imported_total",
			Help:      "Import items by outcome",
		}, []string{"outcome"}),
		itemsDeleted: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "items_deleted_total",
			Help:      "Records removed by clear-data",
		}),
		itemsSeeded: f.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "items_seeded_total",
			Help:      "Demo records written",
		}),
		storeItems: f.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "store_items",
			Help:      "User records in the store at the last stats or export call",
		}),
	}
}

func (m *metrics) observe(route string, status int, elapsed time.Duration) {
	m.requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	m.duration.WithLabelValues(route).Observe(elapsed.Seconds())
}

func (s *Server) metricsHandler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}
