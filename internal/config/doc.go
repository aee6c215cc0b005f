// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

/*
Package config provides centralized configuration management for Parkcast.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. The first existing file among
CONFIG_PATH, ./config.yaml, ./config.yml, /etc/parkcast/config.yaml and
/etc/parkcast/config.yml is used.

# Environment Variables

Server:
  - PORT / HTTP_PORT: Listen port (default: 10000, HTTP_PORT wins)
  - HTTP_HOST: Bind address (default: 0.0.0.0)
  - HTTP_TIMEOUT: Request timeout (default: 30s)

Security:
  - CORS_ORIGINS: Comma-separated allowed origins (default: *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW: Per-IP limit (default: 100 per 1m)
  - DISABLE_RATE_LIMIT: Turn the limiter off (default: false)

Logging:
  - LOG_LEVEL: trace, debug, info, warn, error (default: info)
  - LOG_FORMAT: json or console (default: json)
  - LOG_CALLER: Include caller file:line (default: false)

Catalog and ranking:
  - CATALOG_PATH: Landmark CSV; empty uses the built-in campus
  - CATALOG_SEED_RATIO: Initial free share of capacity (default: 0.4)
  - RANK_RADIUS_KM, RANK_TOP_K, RANK_MAX_TOP_K: Query defaults (100, 10, 100)
  - RANK_LIVE_WEIGHT: Live share of the fused count (default: 0.8)
  - RANK_GRID_CELL_KM: Spatial index cell size (default: 25)
  - RANK_TIMEZONE: Zone for hour and weekday features (default: Local)
  - RANK_QUERY_TIMEOUT: Per-query deadline (default: 5s)

Corpus:
  - CORPUS_BACKEND: csv or duckdb (default: csv)
  - CORPUS_PATH, CORPUS_DUCKDB_PATH: Storage locations
  - CORPUS_MAX_ROWS: Retention bound, 0 keeps everything (default: 200000)
  - CORPUS_CREATE_IF_MISSING: Treat a missing CSV as empty (default: true)
  - CORPUS_SYNTHETIC, CORPUS_SYNTHETIC_ROWS: Bootstrap corpus (true, 5000)

Model:
  - MODEL_DIR, MODEL_NAME, MODEL_KEEP_VERSIONS, MODEL_PERSIST: Artifacts
  - MODEL_TREES, MODEL_SEED, MODEL_MAX_DEPTH, MODEL_MIN_SAMPLES_LEAF,
    MODEL_WORKERS: Forest hyperparameters (100, 42, 0, 1, 0)
  - MODEL_PREDICTION_CACHE: Prediction LRU capacity (4096, 0 disables)

Retrain:
  - RETRAIN_ENABLED, RETRAIN_INTERVAL: Periodic retraining (true, 1h)
  - RETRAIN_ON_STARTUP: Retrain once after boot (default: false)
  - RETRAIN_TIMEOUT: Deadline per run (default: 5m)
  - RETRAIN_MIN_GAP: Minimum spacing of manual triggers (default: 10s)

Journal:
  - JOURNAL_ENABLED, JOURNAL_PATH, JOURNAL_SYNC_WRITES: Live-count journal
  - JOURNAL_GC_INTERVAL: Value log GC cadence (default: 10m)
  - JOURNAL_BREAKER_FAILURES, JOURNAL_BREAKER_TIMEOUT: Circuit breaker (5, 30s)

# Usage Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("Failed to load config: %v", err)
	}
	fmt.Printf("Starting server on %s\n", cfg.Server.Addr())
*/
package config
