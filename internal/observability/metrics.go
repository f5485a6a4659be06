package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starboard_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "starboard_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// PostsCreated counts created posts by kind.
	PostsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starboard_posts_created_total",
		Help: "Total number of posts created by kind",
	}, []string{"kind"})

	// PostsDeleted counts soft-deleted posts.
	PostsDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starboard_posts_deleted_total",
		Help: "Total number of posts soft-deleted by their owners",
	})

	// RatingsUpserted counts rating writes, split by whether the rater had
	// rated the post before.
	RatingsUpserted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starboard_ratings_upserted_total",
		Help: "Total number of rating upserts by outcome (created or updated)",
	}, []string{"outcome"})

	// MediaUploadBytes records uploaded media sizes by kind.
	MediaUploadBytes = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "starboard_media_upload_bytes",
		Help:    "Size distribution of uploaded media objects in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	}, []string{"kind"})

	// MediaCompensationDeletes counts blob deletions performed to roll back a
	// post creation whose database insert failed.
	MediaCompensationDeletes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "starboard_media_compensation_deletes_total",
		Help: "Total number of compensating blob deletes after failed post inserts",
	})

	// CacheHits counts feed/post cache lookups by result.
	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "starboard_cache_lookups_total",
		Help: "Total number of cache lookups by key family and result",
	}, []string{"family", "result"})
)

// DatabaseMetrics wraps DB access for recording query latency.
type DatabaseMetrics struct {
	db *gorm.DB
}

// NewDatabaseMetrics returns a new DatabaseMetrics instance.
func NewDatabaseMetrics(db *gorm.DB) *DatabaseMetrics {
	return &DatabaseMetrics{db: db}
}

// ObserveQuery records the latency of a database query.
func (m *DatabaseMetrics) ObserveQuery(operation, table string, start time.Time) {
	latency := time.Since(start).Seconds()
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(latency)
}

// TrackQuery returns a function that records query latency when called (e.g. defer).
func (m *DatabaseMetrics) TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		m.ObserveQuery(operation, table, start)
	}
}
