// Package metrics provides Prometheus metrics for the adapter: request
// counts and latencies by model, stream chunk throughput, upload counts,
// and the live session gauge.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"kiira-hq/triton/pkg/config"
)

// Collector owns the adapter's Prometheus registry and metric instances.
type Collector struct {
	registry  *prometheus.Registry
	namespace string

	requestsTotal     *prometheus.CounterVec
	requestDuration   *prometheus.HistogramVec
	streamChunksTotal prometheus.Counter
	uploadsTotal      prometheus.Counter
}

// NewCollector creates and registers all adapter metrics. A nil registry
// allocates a private one.
func NewCollector(cfg config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = config.DefaultMetricsNamespace
	}

	c := &Collector{
		registry:  registry,
		namespace: namespace,
		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of chat completion requests processed",
			},
			[]string{"model", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of chat completion requests in seconds",
				// Media generation can take minutes.
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
			},
			[]string{"model"},
		),
		streamChunksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stream_chunks_total",
				Help:      "Total number of SSE chunks written to clients",
			},
		),
		uploadsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_total",
				Help:      "Total number of image attachments uploaded upstream",
			},
		),
	}

	registry.MustRegister(
		c.requestsTotal,
		c.requestDuration,
		c.streamChunksTotal,
		c.uploadsTotal,
	)
	return c
}

// RecordRequest records one completed request with its outcome and
// duration.
func (c *Collector) RecordRequest(model, status string, duration time.Duration) {
	c.requestsTotal.WithLabelValues(model, status).Inc()
	c.requestDuration.WithLabelValues(model).Observe(duration.Seconds())
}

// RecordStreamChunk counts one SSE chunk written to a client.
func (c *Collector) RecordStreamChunk() {
	c.streamChunksTotal.Inc()
}

// RecordUpload counts one attachment upload.
func (c *Collector) RecordUpload() {
	c.uploadsTotal.Inc()
}

// RegisterSessionGauge exposes the live session count through the given
// callback.
func (c *Collector) RegisterSessionGauge(count func() float64) {
	c.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: c.namespace,
			Name:      "active_sessions",
			Help:      "Number of conversation sessions currently stored",
		},
		count,
	))
}
