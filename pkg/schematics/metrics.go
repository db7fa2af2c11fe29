package schematics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsCollector records per-operation request metrics on its own
// Prometheus registry. It is safe for concurrent use.
type MetricsCollector struct {
	registry *prometheus.Registry

	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
	retries  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// RawOperation is the operation label of calls made without an operation
// name, keeping request paths out of metric labels.
const RawOperation = "raw"

// NewMetricsCollector creates a collector whose metric names carry the given
// namespace. An empty namespace defaults to "schematics_client".
func NewMetricsCollector(namespace string) *MetricsCollector {
	if namespace == "" {
		namespace = "schematics_client"
	}

	collector := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of API calls by operation and status code",
			},
			[]string{"operation", "method", "status"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "errors_total",
				Help:      "Total number of failed API calls by operation and error class",
			},
			[]string{"operation", "class"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "retries_total",
				Help:      "Total number of retried attempts by operation",
			},
			[]string{"operation"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "API call latency including retries",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}

	collector.registry.MustRegister(collector.requests, collector.errors, collector.retries, collector.latency)

	return collector
}

// Registry returns the registry holding the collector's metrics, suitable
// for promhttp.HandlerFor.
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveCall records one completed call. A status of 0 means no response
// was received.
func (m *MetricsCollector) ObserveCall(operation, method string, status int, err error, duration time.Duration) {
	m.requests.WithLabelValues(operation, method, strconv.Itoa(status)).Inc()
	m.latency.WithLabelValues(operation).Observe(duration.Seconds())

	if err != nil {
		m.errors.WithLabelValues(operation, ErrorClass(err)).Inc()
	}
}

// ObserveRetry records one retried attempt.
func (m *MetricsCollector) ObserveRetry(operation string) {
	m.retries.WithLabelValues(operation).Inc()
}
