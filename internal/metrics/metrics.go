// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Query Metrics
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_query_duration_seconds",
			Help:    "Duration of recommendation and title resolution queries in seconds",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation", "status"}, // operation: "recommend", "resolve"
	)

	QueryCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_query_cache_lookups_total",
			Help: "Total number of query cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss"
	)

	MatchScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cinematch_title_match_score",
			Help:    "Distribution of fuzzy title match scores (0-100)",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		},
	)

	// Model Metrics
	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_model_version",
			Help: "Version of the model currently being served",
		},
	)

	ModelMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_model_movies",
			Help: "Number of movies in the served model",
		},
	)

	ModelVocabularySize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_model_vocabulary_size",
			Help: "Number of terms in the served model's vocabulary",
		},
	)

	ModelLoadsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cinematch_model_loads_total",
			Help: "Total number of models swapped into the query engine",
		},
	)

	// Training Metrics
	TrainingStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_training_stage_duration_seconds",
			Help:    "Duration of each training stage in seconds",
			Buckets: []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"stage"}, // "load", "features", "vocabulary", "vectorize", "matrix", "persist"
	)

	TrainingRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_training_runs_total",
			Help: "Total number of training runs by outcome",
		},
		[]string{"status"}, // "success", "error"
	)

	TrainingLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cinematch_training_last_success_timestamp_seconds",
			Help: "Unix timestamp of the last successful training run",
		},
	)

	CatalogRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cinematch_catalog_records",
			Help: "Catalog record counts from the last training run by outcome",
		},
		[]string{"outcome"},
	)

	// Artifact Store Metrics
	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cinematch_store_operation_duration_seconds",
			Help:    "Duration of model store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend", "operation"},
	)

	StoreOperationErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cinematch_store_operation_errors_total",
			Help: "Total number of failed model store operations",
		},
		[]string{"backend", "operation"},
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
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Number of in-flight API requests",
		},
	)
)

// RecordQuery records a query metric
func RecordQuery(operation string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	QueryDuration.WithLabelValues(operation, status).Observe(duration.Seconds())
}

// RecordCacheLookup records a query cache hit or miss
func RecordCacheLookup(hit bool) {
	if hit {
		QueryCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	QueryCacheLookups.WithLabelValues("miss").Inc()
}

// RecordMatchScore records the score of a resolved title
func RecordMatchScore(score int) {
	MatchScore.Observe(float64(score))
}

// RecordModelLoaded updates the served model gauges
func RecordModelLoaded(version, movies, vocabularySize int) {
	ModelVersion.Set(float64(version))
	ModelMovies.Set(float64(movies))
	ModelVocabularySize.Set(float64(vocabularySize))
	ModelLoadsTotal.Inc()
}

// RecordTrainingStage records how long one training stage took
func RecordTrainingStage(stage string, duration time.Duration) {
	TrainingStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// RecordTrainingRun records the outcome of a training run
func RecordTrainingRun(err error) {
	if err != nil {
		TrainingRunsTotal.WithLabelValues("error").Inc()
		return
	}
	TrainingRunsTotal.WithLabelValues("success").Inc()
	TrainingLastSuccess.Set(float64(time.Now().Unix()))
}

// SetCatalogRecords publishes per-outcome record counts of the last run
func SetCatalogRecords(counts map[string]int) {
	for outcome, n := range counts {
		CatalogRecords.WithLabelValues(outcome).Set(float64(n))
	}
}

// RecordStoreOperation records a model store operation
func RecordStoreOperation(backend, operation string, duration time.Duration, err error) {
	StoreOperationDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
	if err != nil {
		StoreOperationErrors.WithLabelValues(backend, operation).Inc()
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
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
