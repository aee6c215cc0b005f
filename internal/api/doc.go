// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

/*
Package api provides the HTTP interface of Parkcast using the Chi router.

Endpoints:

	GET  /                 service banner
	GET  /predict          readiness hint
	POST /predict          rank nearby landmarks
	POST /update_activity  report a park or leave event
	GET  /landmarks        catalog with live counters
	GET|POST /learn        retrain from the live snapshot (?async=true to queue)
	GET  /health           model and corpus state
	GET  /metrics          Prometheus exposition

Successful responses carry "status": "Success" (or "Online" and "Accepted"
where noted). Errors use one body shape:

	{"status": "Error", "code": "NOT_FOUND", "message": "...", "request_id": "..."}

Status codes: 400 validation, 404 unknown landmark, 409 retrain already
running, 429 rate limited or retrain requested too soon, 500 persistence
failure, 503 timeout or missing model.

Middleware (global): request ID, RealIP, Recoverer, CORS (go-chi/cors) and
gzip compression. Route groups add per-IP rate limits (go-chi/httprate),
security headers and Prometheus instrumentation.

Usage:

	handler := api.NewHandler(ranker, live, retrainSvc, pipeline, modelHandle, breaker, api.HandlerConfig{
	    QueryTimeout: 5 * time.Second,
	    LearnTimeout: 2 * time.Minute,
	})
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(origins, 100, time.Minute, false))
	server := &http.Server{Addr: ":10000", Handler: router.SetupChi()}
*/
package api
