package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubboard_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clubboard_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ChangeEventsPublished counts change events by collection and type.
	ChangeEventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubboard_change_events_published_total",
		Help: "Total number of change events published",
	}, []string{"collection", "type"})

	// FeedConnections is the gauge of open change-feed connections.
	FeedConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "clubboard_feed_connections",
		Help: "Number of open change-feed WebSocket connections",
	})

	// FeedBackpressureDrops counts events dropped for slow subscribers.
	FeedBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clubboard_feed_backpressure_drops_total",
		Help: "Total number of change events dropped due to backpressure",
	}, []string{"reason"})

	// AvatarUploadBytes records stored avatar object sizes.
	AvatarUploadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "clubboard_avatar_upload_bytes",
		Help:    "Size of stored avatar objects in bytes",
		Buckets: prometheus.ExponentialBuckets(4096, 4, 7),
	})

	// ProfilesPurged counts profiles hard-deleted by the retention job.
	ProfilesPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clubboard_profiles_purged_total",
		Help: "Total number of soft-deleted profiles purged after retention",
	})
)

// TrackQuery returns a function that records query latency when called (e.g. defer).
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
