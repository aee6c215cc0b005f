// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

/*
Package retrain feeds crowd-reported occupancy back into the model.

A run:

 1. takes a consistent snapshot of the live store
 2. stamps every row with the current hour and weekday (Monday = 0)
 3. appends the rows to the corpus
 4. refits the forest on the whole corpus with the configured seed
 5. publishes the new model to the predict.Handle in one atomic swap
 6. persists the artifact and prunes old versions, if configured

Steps 1 to 4 either all succeed or the previously published model keeps
serving. A failure in step 6 is logged and counted but never withdraws a
model that is already serving.

Runs are single-flight: Run returns models.ErrRetrainInProgress instead of
queueing behind a running retrain. Callers that want to share a run's
outcome go through the supervisor's retrain service, which coalesces
triggers.

Bootstrap installs the first model at startup from the newest persisted
artifact, falling back to a fit on the existing corpus and, for a fresh
deployment, on a generated synthetic corpus.
*/
package retrain
