// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

/*
Package middleware provides HTTP middleware components for the application.

Key Components:

  - Request ID: UUID-based request tracking, propagated into the logging context
  - Prometheus Metrics: request count, latency and in-flight instrumentation

Both are written as http.HandlerFunc decorators; the api package adapts them
to chi's func(http.Handler) http.Handler form.

Usage Example:

	handler := middleware.RequestID(middleware.PrometheusMetrics(next))
*/
package middleware
