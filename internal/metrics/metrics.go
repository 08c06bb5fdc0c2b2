// Quizcore - Quiz Scoring and Insight Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quizcore

// Package metrics defines the Prometheus collectors exported on /metrics.
// Collectors are registered with the default registry through promauto, so
// importing the package is enough to expose them.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Quiz Session Metrics
	SessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Total number of quiz sessions started",
		},
		[]string{"content_key", "mode"}, // mode: "base", "extended"
	)

	SessionsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_sessions_completed_total",
			Help: "Total number of quiz sessions completed",
		},
		[]string{"content_key"},
	)

	SessionsAbandoned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "quiz_sessions_abandoned_total",
			Help: "Total number of quiz sessions discarded without completion",
		},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "quiz_sessions_active",
			Help: "Current number of in-progress quiz sessions",
		},
	)

	// Matching and Insight Metrics
	MatchPhase = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quiz_match_total",
			Help: "Total number of outcome matches by phase",
		},
		[]string{"phase"}, // "exact", "partial"
	)

	TagsExtracted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_tags_extracted_total",
			Help: "Total number of insight tags emitted by extraction",
		},
		[]string{"category"},
	)

	TagsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "insight_tags_dropped_total",
			Help: "Total number of mapped identifiers dropped for being outside the tag vocabulary",
		},
		[]string{"content_key"},
	)

	// Popularity Cache Metrics
	PopularityCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "popularity_cache_hits_total",
			Help: "Total number of segmented popularity cache hits",
		},
	)

	PopularityCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "popularity_cache_misses_total",
			Help: "Total number of segmented popularity cache misses",
		},
	)

	PopularityCacheInvalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popularity_cache_invalidations_total",
			Help: "Total number of popularity cache invalidations",
		},
		[]string{"scope"}, // "segment", "all"
	)

	PopularityRankings = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "popularity_rankings_total",
			Help: "Total number of catalog rankings by ordering source",
		},
		[]string{"source"}, // "cache", "live", "static"
	)

	PopularityFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "popularity_fetch_duration_seconds",
			Help:    "Duration of popularity source fetches in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"topic", "result"}, // result: "success", "error"
	)

	EventsHandled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "events_handled_total",
			Help: "Total number of domain events handled",
		},
		[]string{"topic", "result"},
	)

	// Storage Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_duration_seconds",
			Help:    "Duration of badger store operations in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operation_errors_total",
			Help: "Total number of badger store operation errors",
		},
		[]string{"operation"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"endpoint"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordSessionStarted records a new quiz session.
func RecordSessionStarted(contentKey string, extended bool) {
	mode := "base"
	if extended {
		mode = "extended"
	}
	SessionsStarted.WithLabelValues(contentKey, mode).Inc()
	SessionsActive.Inc()
}

// RecordSessionCompleted records a completed quiz session and its match phase.
func RecordSessionCompleted(contentKey, phase string) {
	SessionsCompleted.WithLabelValues(contentKey).Inc()
	MatchPhase.WithLabelValues(phase).Inc()
	SessionsActive.Dec()
}

// RecordSessionAbandoned records a discarded quiz session.
func RecordSessionAbandoned() {
	SessionsAbandoned.Inc()
	SessionsActive.Dec()
}

// RecordTagsDropped records identifiers removed by the vocabulary filter.
func RecordTagsDropped(contentKey string, n int) {
	if n <= 0 {
		return
	}
	TagsDropped.WithLabelValues(contentKey).Add(float64(n))
}

// RecordPopularityFetch records a popularity source fetch.
func RecordPopularityFetch(duration time.Duration) {
	PopularityFetchDuration.Observe(duration.Seconds())
}

// RecordEventPublished records a publish attempt on topic.
func RecordEventPublished(topic string, err error) {
	EventsPublished.WithLabelValues(topic, resultLabel(err)).Inc()
}

// RecordEventHandled records a handler invocation on topic.
func RecordEventHandled(topic string, err error) {
	EventsHandled.WithLabelValues(topic, resultLabel(err)).Inc()
}

// RecordStoreOperation records a badger store operation.
func RecordStoreOperation(operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(operation).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

func resultLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
