// Package observability provides metrics and tracing.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postboard_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// DatabaseQueryErrors counts failed database queries by operation and table.
	DatabaseQueryErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_database_query_errors_total",
		Help: "Total number of failed database queries",
	}, []string{"operation", "table"})

	// EventPublishTotal counts post lifecycle events by type and outcome.
	EventPublishTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_event_publish_total",
		Help: "Post lifecycle events published to Redis by type and outcome",
	}, []string{"event_type", "outcome"})

	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "postboard_redis_errors_total",
		Help: "Total number of failed Redis commands",
	}, []string{"command"})
)

// Collectors returns the application metrics for registration on a registry.
// A collector may be registered on more than one registry.
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		DatabaseQueryLatency,
		DatabaseQueryErrors,
		EventPublishTotal,
		RedisErrors,
	}
}

// DatabaseMetrics records query latency for one table.
type DatabaseMetrics struct {
	table string
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(table string) *DatabaseMetrics {
	return &DatabaseMetrics{table: table}
}

// ObserveQuery records the latency of a database query and counts it as failed when err is non-nil.
func (m *DatabaseMetrics) ObserveQuery(operation string, start time.Time, err error) {
	DatabaseQueryLatency.WithLabelValues(operation, m.table).Observe(time.Since(start).Seconds())
	if err != nil {
		DatabaseQueryErrors.WithLabelValues(operation, m.table).Inc()
	}
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation string) func(err error) {
	start := time.Now()
	return func(err error) {
		m.ObserveQuery(operation, start, err)
	}
}
