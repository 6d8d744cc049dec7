// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "friendmarket_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// CacheLookups counts cache-aside lookups by key family and result (hit, miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "friendmarket_cache_lookups_total",
		Help: "Cache-aside lookups by key family and result",
	}, []string{"family", "result"})

	// DatabaseQueryLatency records repository query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "friendmarket_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PushDeliveries counts push gateway calls by event kind and outcome.
	PushDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "friendmarket_push_deliveries_total",
		Help: "Push notification deliveries by kind and result",
	}, []string{"kind", "result"})

	// PushRecipients observes fan-out size per push event.
	PushRecipients = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "friendmarket_push_recipients",
		Help:    "Number of device tokens targeted per push event",
		Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 1000},
	}, []string{"kind"})

	// MailDeliveries counts transactional mail attempts by template and outcome.
	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "friendmarket_mail_deliveries_total",
		Help: "Transactional email deliveries by template and result",
	}, []string{"template", "result"})

	// ImagesProcessed counts resize operations by kind and outcome.
	ImagesProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "friendmarket_images_processed_total",
		Help: "Uploaded images resized by kind and result",
	}, []string{"kind", "result"})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

// Result maps an error to the "ok"/"error" label used across counters.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
