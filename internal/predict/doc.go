// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

/*
Package predict implements the availability predictor.

The model is a random-forest regressor over four features (latitude,
longitude, hour of day, weekday with Monday = 0) trained on the
historical corpus. Trees are CART regression trees grown on bootstrap
samples with squared-error splits. Each tree draws from its own seeded
PCG stream, so a given corpus and seed always produce the same forest no
matter how many workers fit it.

# Serving

A fitted Model is published into a Handle, which holds it behind an
atomic pointer:

	h := predict.NewHandle()
	forest, err := predict.FitObservations(ctx, rows, predict.DefaultForestConfig())
	if err != nil {
		return err
	}
	h.Publish(&predict.Model{Forest: forest, Version: 1, TrainedAt: time.Now(), Rows: len(rows)})

	n, err := h.Predict(28.6315, 77.2167, 17, 2)

Until the first Publish, Handle.Predict returns models.ErrModelUnavailable.

# Persistence

Fitted models are stored by the storage subpackage as versioned,
gzip-compressed gob files.
*/
package predict
