package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Rewrite Workflow Metrics
var (
	// RewritesSubmittedTotal tracks rewrite submissions by outcome
	RewritesSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewrites_submitted_total",
			Help: "Total rewrite submissions by result (created, malformed, not_found, storage_error)",
		},
		[]string{"result"},
	)

	// RewritesDeletedTotal tracks rewrite deletions by outcome
	RewritesDeletedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rewrites_deleted_total",
			Help: "Total rewrite deletions by result (deleted, not_found, forbidden, storage_error)",
		},
		[]string{"result"},
	)
)

// Session & Identity Metrics
var (
	// RateLimitDecisionsTotal tracks anonymous quota decisions
	RateLimitDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_decisions_total",
			Help: "Total rate limiter decisions by outcome (new_anonymous, anonymous_allowed, anonymous_rejected, identified)",
		},
		[]string{"decision"},
	)

	// AnonymousUsersCreatedTotal tracks anonymous accounts minted for new sessions
	AnonymousUsersCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "anonymous_users_created_total",
			Help: "Total anonymous users created on first request of a session",
		},
	)

	// AuthAttemptsTotal tracks signup and login attempts
	AuthAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "auth_attempts_total",
			Help: "Total authentication attempts by action and result",
		},
		[]string{"action", "result"},
	)
)

// Scoring Metrics
var (
	// SentimentScoreDuration tracks sentiment scoring latency by scorer
	SentimentScoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sentiment_score_duration_seconds",
			Help:    "Sentiment scoring duration in seconds by scorer (lexicon, model)",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .25, .5, 1, 2.5},
		},
		[]string{"scorer"},
	)

	// SentimentFallbacksTotal tracks model scorer falling back to the lexicon
	SentimentFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_fallbacks_total",
			Help: "Total model scorer fallbacks to the lexicon by reason",
		},
		[]string{"reason"},
	)
)

// Feed Ingestion Metrics
var (
	// FeedFetchesTotal tracks feed fetches by result
	FeedFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_fetches_total",
			Help: "Total RSS feed fetches by result (success, error)",
		},
		[]string{"result"},
	)

	// FeedItemsTotal tracks feed items by ingestion outcome
	FeedItemsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_items_total",
			Help: "Total feed items by outcome (stored, duplicate, skipped, error)",
		},
		[]string{"outcome"},
	)

	// IngestRunDuration tracks a full ingestion pass over all sources
	IngestRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_run_duration_seconds",
			Help:    "Duration of a full feed ingestion run in seconds",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)
)

// Cache Metrics
var (
	// HeadlineCacheRequestsTotal tracks recent-headline cache lookups
	HeadlineCacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "headline_cache_requests_total",
			Help: "Total recent-headline cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)
)

// Redis Operations Metrics
var (
	// RedisOpsTotal tracks total Redis operations by operation type and status
	RedisOpsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_operations_total",
			Help: "Total Redis operations by operation and status",
		},
		[]string{"operation", "status"},
	)

	// RedisOpDuration tracks Redis operation latency in seconds
	RedisOpDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_operation_duration_seconds",
			Help:    "Redis operation duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"operation"},
	)

	// RedisConnectionErrors tracks Redis connection errors
	RedisConnectionErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "redis_connection_errors_total",
			Help: "Total Redis connection errors",
		},
	)
)

// Circuit Breaker Metrics
var (
	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)

// Database Metrics
var (
	// DBQueryDuration tracks database query duration by query name
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"query"},
	)

	// DBConnectionsCurrent tracks current database connections by state
	DBConnectionsCurrent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "db_connections_current",
			Help: "Current database connections by state (active/idle)",
		},
		[]string{"state"},
	)

	// DBErrorsTotal tracks database errors by query name
	DBErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "db_errors_total",
			Help: "Total database errors by query",
		},
		[]string{"query"},
	)
)

// HTTP Metrics
var (
	// HTTPRequestDuration tracks request latency by route
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status_code"},
	)

	// HTTPErrorsTotal tracks HTTP errors by taxonomy type
	HTTPErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_errors_total",
			Help: "Total HTTP errors by error type",
		},
		[]string{"type"},
	)
)

// Build Information Metrics
var (
	// BuildInfo is a gauge that always returns 1, with build metadata as labels
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, build_time, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "build_time", "go_version"},
	)
)
