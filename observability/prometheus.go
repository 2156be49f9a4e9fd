package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// prometheusRecorder records client metrics into Prometheus collectors.
type prometheusRecorder struct {
	requests      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	rateLimitWait *prometheus.HistogramVec
	errors        *prometheus.CounterVec
}

// NewPrometheusRecorder returns a MetricsRecorder that registers its
// collectors with reg. Pass prometheus.DefaultRegisterer to use the
// default registry.
//
// Paths recorded by the HTTP middleware are normalized (site names and IDs
// replaced with placeholders) so label cardinality stays bounded.
//
//nolint:ireturn // Factory function must return interface for dependency injection pattern
func NewPrometheusRecorder(reg prometheus.Registerer) MetricsRecorder {
	r := &prometheusRecorder{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unifi_client_http_requests_total",
			Help: "Total HTTP requests issued to the controller.",
		}, []string{"method", "path", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "unifi_client_http_request_duration_seconds",
			Help:    "HTTP request latency against the controller.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		rateLimitWait: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "unifi_client_rate_limit_wait_seconds",
			Help:    "Time spent waiting on the local rate limiter.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "unifi_client_errors_total",
			Help: "Client errors by operation and type.",
		}, []string{"operation", "type"}),
	}

	reg.MustRegister(r.requests, r.duration, r.rateLimitWait, r.errors)

	return r
}

func (r *prometheusRecorder) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	r.requests.WithLabelValues(method, path, strconv.Itoa(statusCode)).Inc()
	r.duration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (r *prometheusRecorder) RecordRateLimit(endpoint string, wait time.Duration) {
	r.rateLimitWait.WithLabelValues(endpoint).Observe(wait.Seconds())
}

func (r *prometheusRecorder) RecordError(operation, errorType string) {
	r.errors.WithLabelValues(operation, errorType).Inc()
}
