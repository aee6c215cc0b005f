// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		},
	)

	// Ranking Metrics
	RankQueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkcast_rank_queries_total",
			Help: "Total number of rank queries by result",
		},
		[]string{"result"}, // "ok", "invalid", "error"
	)

	RankDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parkcast_rank_duration_seconds",
			Help:    "Duration of rank queries in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5},
		},
	)

	RankResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parkcast_rank_results",
			Help:    "Number of spots returned per rank query",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
	)

	PredictionFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkcast_prediction_fallbacks_total",
			Help: "Candidates served with ml_count=0 because no prediction was available",
		},
		[]string{"reason"},
	)

	// Live Occupancy Metrics
	LiveEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkcast_live_events_total",
			Help: "Total park/leave reports by result",
		},
		[]string{"action", "result"},
	)

	LiveAvailable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "parkcast_live_available",
			Help: "Current crowd-reported free spots per landmark",
		},
		[]string{"landmark"},
	)

	JournalWritesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkcast_journal_writes_total",
			Help: "Live journal writes by result",
		},
		[]string{"result"},
	)

	JournalBreakerState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "parkcast_journal_breaker_state",
			Help: "Live journal circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Retrain Metrics
	RetrainRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkcast_retrain_runs_total",
			Help: "Total retrain pipeline runs by status",
		},
		[]string{"status"},
	)

	RetrainDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parkcast_retrain_duration_seconds",
			Help:    "Duration of retrain pipeline runs in seconds",
			Buckets: []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	RetrainAppendedRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parkcast_retrain_appended_rows_total",
			Help: "Total live observations appended to the corpus",
		},
	)

	ModelVersion = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "parkcast_model_version",
			Help: "Version of the prediction model currently served",
		},
	)

	CorpusRows = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "parkcast_corpus_rows",
			Help: "Number of rows in the training corpus after the last retrain",
		},
	)

	ModelPersistErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "parkcast_model_persist_errors_total",
			Help: "Total failed model artifact writes",
		},
	)

	PredictionCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkcast_prediction_cache_lookups_total",
			Help: "Prediction cache lookups by result (hit, miss)",
		},
		[]string{"result"},
	)
)

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight request gauge.
func TrackActiveRequest(start bool) {
	if start {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordRankQuery records one rank query. A non-nil err counts as "invalid"
// when invalid is true and "error" otherwise.
func RecordRankQuery(duration time.Duration, results int, err error, invalid bool) {
	RankDuration.Observe(duration.Seconds())
	switch {
	case err == nil:
		RankQueriesTotal.WithLabelValues("ok").Inc()
		RankResults.Observe(float64(results))
	case invalid:
		RankQueriesTotal.WithLabelValues("invalid").Inc()
	default:
		RankQueriesTotal.WithLabelValues("error").Inc()
	}
}

// RecordPredictionFallback counts a candidate whose ml_count fell back to zero.
func RecordPredictionFallback(reason string) {
	PredictionFallbacks.WithLabelValues(reason).Inc()
}

// RecordPredictionCache counts a prediction cache lookup.
func RecordPredictionCache(hit bool) {
	if hit {
		PredictionCacheLookups.WithLabelValues("hit").Inc()
		return
	}
	PredictionCacheLookups.WithLabelValues("miss").Inc()
}

// RecordLiveEvent counts a park/leave report.
func RecordLiveEvent(action, result string) {
	LiveEventsTotal.WithLabelValues(action, result).Inc()
}

// SetLiveAvailable publishes the current free-spot count for a landmark.
func SetLiveAvailable(landmark string, available int) {
	LiveAvailable.WithLabelValues(landmark).Set(float64(available))
}

// RecordJournalWrite counts a journal write.
func RecordJournalWrite(err error) {
	if err != nil {
		JournalWritesTotal.WithLabelValues("error").Inc()
		return
	}
	JournalWritesTotal.WithLabelValues("ok").Inc()
}

// SetJournalBreakerState publishes the journal circuit breaker state by name
// ("closed", "half-open", "open").
func SetJournalBreakerState(state string) {
	switch state {
	case "open":
		JournalBreakerState.Set(2)
	case "half-open":
		JournalBreakerState.Set(1)
	default:
		JournalBreakerState.Set(0)
	}
}

// RecordRetrain records a pipeline run. Skipped runs (another run in
// progress) are counted separately from failures.
func RecordRetrain(duration time.Duration, appended int, err error, skipped bool) {
	switch {
	case skipped:
		RetrainRunsTotal.WithLabelValues("skipped").Inc()
		return
	case err != nil:
		RetrainRunsTotal.WithLabelValues("failed").Inc()
	default:
		RetrainRunsTotal.WithLabelValues("success").Inc()
		RetrainAppendedRows.Add(float64(appended))
	}
	RetrainDuration.Observe(duration.Seconds())
}

// SetModelVersion publishes the served model version.
func SetModelVersion(version int) {
	ModelVersion.Set(float64(version))
}

// SetCorpusRows publishes the corpus size.
func SetCorpusRows(rows int) {
	CorpusRows.Set(float64(rows))
}

// RecordModelPersistError counts a failed artifact write.
func RecordModelPersistError() {
	ModelPersistErrors.Inc()
}
