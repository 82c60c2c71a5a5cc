package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Config controls metric collection.
type Config struct {
	// Enabled toggles metric recording. When false, RecordRequest is a no-op
	// and the handler serves an empty registry.
	Enabled bool

	// Namespace is the metric name prefix.
	// Default: "vanguard"
	Namespace string

	// RequestDurationBuckets are the histogram buckets for request latency
	// in seconds.
	RequestDurationBuckets []float64
}

// Collector owns the Prometheus registry and the HTTP request metrics.
//
// Metrics:
//   - <ns>_http_requests_total: request count by method and status
//   - <ns>_http_request_duration_seconds: request latency histogram by method
type Collector struct {
	config   Config
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry.
func NewCollector(cfg Config) *Collector {
	if cfg.Namespace == "" {
		cfg.Namespace = "vanguard"
	}
	if len(cfg.RequestDurationBuckets) == 0 {
		// Search and ingest latencies, 1ms to 30s.
		cfg.RequestDurationBuckets = []float64{0.001, 0.005, 0.025, 0.1, 0.25, 1.0, 5.0, 30.0}
	}

	c := &Collector{
		config:   cfg,
		registry: prometheus.NewRegistry(),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"method", "status"},
		),

		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   cfg.RequestDurationBuckets,
			},
			[]string{"method"},
		),
	}

	if cfg.Enabled {
		c.registry.MustRegister(c.requestsTotal, c.requestDuration)
	}

	return c
}

// RecordRequest records one completed HTTP request. It satisfies the
// middleware.MetricsHook signature.
func (c *Collector) RecordRequest(method string, status int, elapsed time.Duration) {
	if !c.config.Enabled {
		return
	}

	c.requestsTotal.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// Registry returns the underlying Prometheus registry, for registering
// additional collectors.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
