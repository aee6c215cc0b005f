// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

/*
Package models defines the data structures shared across Parkcast.

Key Components:

  - Landmark: a named parking location with coordinates and capacity
  - LiveStatus: the crowd-updated count of free spots at one landmark
  - Observation: one historical training row (landmark, time context, free spots)
  - Spot: a ranked result combining live and predicted availability
  - Action: a user report ("park" or "leave")

Errors:

The package also owns the error taxonomy used by every layer. Each kind has a
sentinel for errors.Is checks and, where context matters, a typed error that
unwraps to the sentinel:

	if errors.Is(err, models.ErrNotFound) {
	    // unknown landmark
	}

	var verr *models.ValidationError
	if errors.As(err, &verr) {
	    log.Printf("bad field %s: %s", verr.Field, verr.Reason)
	}

Time Context:

Hours are wall-clock hours (0-23) and weekdays are numbered Monday=0 through
Sunday=6. Use Weekday to convert a time.Time; time.Weekday numbers Sunday=0.
*/
package models
