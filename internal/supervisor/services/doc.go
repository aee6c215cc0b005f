// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

/*
Package services provides suture.Service wrappers for Parkcast components.

Each wrapper translates a component's lifecycle into suture's
Serve(ctx) error pattern and identifies itself through fmt.Stringer.

# Available Services

HTTP Server (HTTPServerService):
  - Runs ListenAndServe in a goroutine
  - Shuts down with a fresh bounded context on cancellation

Retrain Loop (RetrainService):
  - Runs the retrain pipeline on a ticker and optionally at startup
  - Trigger queues a manual run; triggers that arrive while a run is pending
    or in progress share the next run's outcome
  - Manual triggers that would start a new run are throttled by an
    x/time/rate limiter (RETRAIN_MIN_GAP)

Journal GC (JournalGCService):
  - Runs Badger value log GC on the live journal at a fixed interval
  - Exits with suture.ErrDoNotRestart once the journal is closed
*/
package services
