package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation strategies
	RecommendationsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_served_total",
			Help: "Total number of recommendation requests served, by strategy and outcome",
		},
		[]string{"strategy", "outcome"}, // outcome: "ok", "cached", "error"
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recommendation_duration_seconds",
			Help:    "Time spent computing recommendations, by strategy",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"strategy"},
	)

	// Snapshot
	SnapshotBuildDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recommendation_snapshot_build_duration_seconds",
			Help:    "Time spent building the recommendation snapshot",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	SnapshotBuildErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendation_snapshot_build_errors_total",
			Help: "Total number of failed snapshot builds",
		},
	)

	SnapshotVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommendation_snapshot_version",
			Help: "Version of the snapshot currently serving requests",
		},
	)

	SnapshotSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "recommendation_snapshot_size",
			Help: "Dimensions of the current snapshot",
		},
		[]string{"dimension"}, // "users", "movies", "ratings"
	)

	// Preference ledger
	PreferenceAdjustments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "preference_adjustments_total",
			Help: "Total number of genre preference adjustments",
		},
		[]string{"action", "source"},
	)

	PreferenceAdjustmentErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "preference_adjustment_errors_total",
			Help: "Total number of failed genre preference adjustments",
		},
	)

	// Cache
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of Redis cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of Redis cache misses",
		},
		[]string{"cache"},
	)

	RateLimited = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
	)
)

// ObserveRecommendation records the outcome and latency of one
// recommendation request.
func ObserveRecommendation(strategy, outcome string, start time.Time) {
	RecommendationsServed.WithLabelValues(strategy, outcome).Inc()
	RecommendationDuration.WithLabelValues(strategy).Observe(time.Since(start).Seconds())
}

// RecordSnapshot publishes the metadata of a freshly built snapshot.
func RecordSnapshot(version int64, users, movies, ratings int, took time.Duration) {
	SnapshotBuildDuration.Observe(took.Seconds())
	SnapshotVersion.Set(float64(version))
	SnapshotSize.WithLabelValues("users").Set(float64(users))
	SnapshotSize.WithLabelValues("movies").Set(float64(movies))
	SnapshotSize.WithLabelValues("ratings").Set(float64(ratings))
}
