// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

/*
Package metrics provides Prometheus metrics collection and export for observability.

# Metrics Endpoint

Metrics are exposed at the /metrics endpoint in Prometheus text format:

	curl http://localhost:10000/metrics

# Available Metrics

HTTP Metrics:
  - http_requests_total: Total HTTP requests (counter)
    Labels: method, endpoint, status
  - http_request_duration_seconds: Request latency (histogram)
    Labels: method, endpoint

Ranking Metrics:
  - parkcast_rank_queries_total: Rank queries by result (counter)
  - parkcast_rank_duration_seconds: Rank latency (histogram)
  - parkcast_rank_results: Spots returned per query (histogram)
  - parkcast_prediction_fallbacks_total: Candidates served with ml_count=0 (counter)
    Labels: reason ("unavailable", "error")

Live Occupancy Metrics:
  - parkcast_live_events_total: park/leave reports (counter)
    Labels: action, result ("ok", "not_found", "persist_error")
  - parkcast_live_available: Current free spots (gauge)
    Labels: landmark
  - parkcast_journal_writes_total: Journal writes by result (counter)
  - parkcast_journal_breaker_state: 0=closed, 1=half-open, 2=open (gauge)

Retrain Metrics:
  - parkcast_retrain_runs_total: Pipeline runs (counter)
    Labels: status ("success", "failed", "skipped")
  - parkcast_retrain_duration_seconds: Pipeline duration (histogram)
  - parkcast_retrain_appended_rows_total: Observations appended (counter)
  - parkcast_model_version: Version of the served model (gauge)
  - parkcast_corpus_rows: Rows in the training corpus (gauge)
  - parkcast_model_persist_errors_total: Failed artifact writes (counter)

# Usage

Components call the Record* and Set* helpers rather than touching the
collectors directly:

	start := time.Now()
	spots, err := ranker.Rank(ctx, q)
	metrics.RecordRankQuery(time.Since(start), len(spots), err)
*/
package metrics
