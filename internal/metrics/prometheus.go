package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the play-by-play service

var (
	// Stats site request metrics
	SiteRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaa_stats_site_requests_total",
			Help: "Total number of stats site requests",
		},
		[]string{"endpoint", "status"},
	)

	SiteRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ncaa_stats_site_request_duration_seconds",
			Help:    "Duration of stats site requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Database metrics
	DBQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaa_stats_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "table", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ncaa_stats_db_query_duration_seconds",
			Help:    "Duration of database queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation", "table"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaa_stats_db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaa_stats_db_connections_idle",
			Help: "Number of idle database connections",
		},
	)

	// Cache metrics, by layer ("disk", "redis")
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaa_stats_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"layer"},
	)

	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaa_stats_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"layer"},
	)

	CacheOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ncaa_stats_cache_operation_duration_seconds",
			Help:    "Duration of cache operations in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"layer", "operation"},
	)

	// Normalization metrics
	GamesNormalizedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaa_stats_games_normalized_total",
			Help: "Total number of games normalized",
		},
		[]string{"sport", "status"},
	)

	PlaysSkippedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaa_stats_plays_skipped_total",
			Help: "Total number of plays dropped for an unparseable clock",
		},
		[]string{"sport"},
	)

	NormalizeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ncaa_stats_normalize_duration_seconds",
			Help:    "Duration of clock normalization per game in seconds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5},
		},
	)

	// Sync metrics
	SyncOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaa_stats_sync_operations_total",
			Help: "Total number of sync operations",
		},
		[]string{"type", "status"},
	)

	SyncDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ncaa_stats_sync_duration_seconds",
			Help:    "Duration of sync operations in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		},
		[]string{"type"},
	)

	PendingGames = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaa_stats_pending_games",
			Help: "Number of games waiting to be fetched",
		},
	)

	// Error metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaa_stats_errors_total",
			Help: "Total number of errors",
		},
		[]string{"component", "error_type"},
	)

	// Scheduler metrics
	SchedulerRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaa_stats_scheduler_runs_total",
			Help: "Total number of scheduler job runs",
		},
		[]string{"job"},
	)

	GamesDiscoveredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ncaa_stats_games_discovered_total",
			Help: "Total number of games found on day schedules",
		},
		[]string{"sport"},
	)

	// System metrics
	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaa_stats_system_uptime_seconds",
			Help: "System uptime in seconds",
		},
	)

	LastSuccessfulSync = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ncaa_stats_last_successful_sync_timestamp",
			Help: "Timestamp of last successful sync operation",
		},
	)
)

// RecordSiteRequest records a stats site request
func RecordSiteRequest(endpoint, status string, duration float64) {
	SiteRequestsTotal.WithLabelValues(endpoint, status).Inc()
	SiteRequestDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordDBQuery records a database query metric
func RecordDBQuery(operation, table, status string, duration float64) {
	DBQueriesTotal.WithLabelValues(operation, table, status).Inc()
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration)
}

// RecordCacheHit records a cache hit
func RecordCacheHit(layer string) {
	CacheHitsTotal.WithLabelValues(layer).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(layer string) {
	CacheMissesTotal.WithLabelValues(layer).Inc()
}

// RecordCacheOperation records a cache operation duration
func RecordCacheOperation(layer, operation string, duration float64) {
	CacheOperationDuration.WithLabelValues(layer, operation).Observe(duration)
}

// RecordNormalization records the outcome of normalizing one game
func RecordNormalization(sport, status string, skipped int, duration float64) {
	GamesNormalizedTotal.WithLabelValues(sport, status).Inc()
	if skipped > 0 {
		PlaysSkippedTotal.WithLabelValues(sport).Add(float64(skipped))
	}
	NormalizeDuration.Observe(duration)
}

// RecordSync records a sync operation
func RecordSync(syncType, status string, duration float64) {
	SyncOperationsTotal.WithLabelValues(syncType, status).Inc()
	SyncDuration.WithLabelValues(syncType).Observe(duration)

	if status == "success" {
		LastSuccessfulSync.SetToCurrentTime()
	}
}

// RecordError records an error
func RecordError(component, errorType string) {
	ErrorsTotal.WithLabelValues(component, errorType).Inc()
}

// RecordSchedulerRun records a scheduler job run
func RecordSchedulerRun(job string) {
	SchedulerRunsTotal.WithLabelValues(job).Inc()
}

// RecordGamesDiscovered records games found on a day schedule
func RecordGamesDiscovered(sport string, n int) {
	GamesDiscoveredTotal.WithLabelValues(sport).Add(float64(n))
}

// UpdateDBConnectionStats updates database connection pool statistics
func UpdateDBConnectionStats(active, idle int32) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}

// UpdatePendingGames sets the pending queue depth
func UpdatePendingGames(n int64) {
	PendingGames.Set(float64(n))
}
