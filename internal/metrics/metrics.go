// Package metrics holds the Prometheus collectors for dataset discovery,
// metadata persistence and the HTTP surface.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics. Every method is a no-op on a nil
// receiver so library callers may run without metrics.
type Metrics struct {
	// HTTP request metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPRequestSize     *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Dataset discovery metrics
	SchemeClassifications *prometheus.CounterVec
	PartitionFallbacks    *prometheus.CounterVec
	OpenDuration          prometheus.Histogram

	// Metadata metrics
	MetadataUpdates prometheus.Counter
	MetadataPersist *prometheus.CounterVec
}

// New registers all collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataset_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dataset_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		HTTPRequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dataset_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "endpoint"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dataset_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "endpoint"},
		),

		SchemeClassifications: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataset_scheme_classifications_total",
				Help: "Datasets classified, by partitioning scheme",
			},
			[]string{"scheme"},
		),
		PartitionFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataset_partition_fallbacks_total",
				Help: "Partition columns downgraded to strings, by reason",
			},
			[]string{"reason"},
		),
		OpenDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "dataset_open_duration_seconds",
				Help:    "Time to list, classify and load metadata of a dataset",
				Buckets: prometheus.DefBuckets,
			},
		),

		MetadataUpdates: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dataset_metadata_updates_total",
				Help: "Custom metadata update requests applied",
			},
		),
		MetadataPersist: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dataset_metadata_persist_total",
				Help: "Footer metadata writes, by outcome",
			},
			[]string{"status"},
		),
	}
}

// RecordClassification counts a dataset opened with the given scheme.
func (m *Metrics) RecordClassification(scheme string) {
	if m == nil {
		return
	}
	m.SchemeClassifications.WithLabelValues(scheme).Inc()
}

// RecordFallback counts a partition column downgraded to strings.
func (m *Metrics) RecordFallback(reason string) {
	if m == nil {
		return
	}
	m.PartitionFallbacks.WithLabelValues(reason).Inc()
}

// ObserveOpen records how long opening a dataset took.
func (m *Metrics) ObserveOpen(d time.Duration) {
	if m == nil {
		return
	}
	m.OpenDuration.Observe(d.Seconds())
}

// RecordUpdate counts an applied metadata update.
func (m *Metrics) RecordUpdate() {
	if m == nil {
		return
	}
	m.MetadataUpdates.Inc()
}

// RecordPersist counts a footer write by outcome.
func (m *Metrics) RecordPersist(err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.MetadataPersist.WithLabelValues(status).Inc()
}

// RecordRequest records one served HTTP request.
func (m *Metrics) RecordRequest(method, endpoint, status string, duration time.Duration, reqSize, respSize int64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())

	if reqSize > 0 {
		m.HTTPRequestSize.WithLabelValues(method, endpoint).Observe(float64(reqSize))
	}
	if respSize > 0 {
		m.HTTPResponseSize.WithLabelValues(method, endpoint).Observe(float64(respSize))
	}
}
