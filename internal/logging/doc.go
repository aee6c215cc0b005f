// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

// Package logging provides centralized zerolog-based structured logging for Parkcast.
//
// The package wraps a single global zerolog.Logger: JSON output in
// production, console output for development, and an slog adapter so the
// Suture supervisor tree writes through the same logger.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//
//	logging.Info().Msg("Server starting")
//	logging.Error().Err(err).Msg("Operation failed")
//
//	// With request context (request_id, run_id)
//	logging.Ctx(ctx).Info().Str("landmark", name).Msg("Activity recorded")
//
// Components that are constructed once (ranker, retrain pipeline, services)
// receive a zerolog.Logger in their constructor and tag it with a component
// field; tests pass zerolog.Nop().
//
// # Configuration
//
// Environment Variables:
//
//	LOG_LEVEL   - Minimum log level: trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  - Output format: json, console (default: json)
//	LOG_CALLER  - Include caller file:line: true, false (default: false)
//
// # Context Fields
//
// The request ID middleware stores the X-Request-ID value with
// ContextWithRequestID. Retrain runs carry a short run ID set with
// ContextWithRunID. Ctx and FromContext add both as request_id and run_id.
//
// # Supervisor Integration
//
//	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), cfg)
//
// slog groups become dot-separated key prefixes ("supervisor.attempt").
//
// Always terminate log chains with .Msg() or .Send(); an unterminated event
// is never written.
package logging
