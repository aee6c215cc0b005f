// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

/*
Package main is the entry point for the Parkcast server application.

Parkcast ranks parking landmarks near a point by distance and reports, for
each, the crowd-reported free-spot count, a random-forest prediction for the
current hour and weekday, and a weighted blend of the two. Users report park
and leave events; a retrain folds the live counters into the historical
corpus and refits the model.

# Application Architecture

The server implements a layered architecture with Suture v4 process supervision:

	RootSupervisor ("parkcast")
	├── DataSupervisor ("data-layer")
	│   └── Journal GC (if JOURNAL_ENABLED)
	├── LearningSupervisor ("learning-layer")
	│   └── Retrain service (schedule + /learn triggers)
	└── APISupervisor ("api-layer")
	    └── HTTP Server

Component initialization order:

 1. Configuration: Koanf v2 with environment variables and config files
 2. Logging: zerolog with JSON/console output modes
 3. Catalog: CSV file (CATALOG_PATH) or built-in landmarks
 4. Live journal: BadgerDB behind a gobreaker circuit breaker
 5. Live store: seeded counters, restored from the journal
 6. Corpus: CSV file or DuckDB table
 7. Model: newest persisted artifact, or a fresh fit (synthetic seed if empty)
 8. Supervisor Tree and HTTP Server: Chi router with middleware stack

# Configuration

Configuration is loaded via Koanf v2 with layered sources (highest priority wins):

	Priority: Environment variables > Config file > Defaults

Core environment variables:

	PORT=10000                   # HTTP port (HTTP_PORT overrides)
	LOG_LEVEL=info               # trace, debug, info, warn, error
	LOG_FORMAT=json              # json or console
	CORS_ORIGINS=https://maps.example.com

	CATALOG_PATH=/data/landmarks.csv
	CORPUS_BACKEND=csv           # csv or duckdb
	CORPUS_PATH=/data/parking_history.csv
	MODEL_DIR=/data/models
	MODEL_PREDICTION_CACHE=4096  # 0 disables
	RETRAIN_ENABLED=true
	RETRAIN_INTERVAL=1h
	JOURNAL_ENABLED=true
	JOURNAL_PATH=/data/journal

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests for up to 10 seconds, pending /learn callers receive the
cancellation, and the journal and corpus are closed last.

# Example Usage

	export CORS_ORIGINS=http://localhost:5173
	export LOG_FORMAT=console
	./parkcast

	curl -s -X POST localhost:10000/predict -d '{"latitude": 26.15, "longitude": 91.77}'
	curl -s -X POST localhost:10000/update_activity -d '{"name": "City Centre Mall", "action": "park"}'
	curl -s -X POST localhost:10000/learn
*/
package main
