// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

// Package journal makes live occupancy counters durable.
//
// BadgerJournal keeps one key per landmark ("live:<name>") holding the
// JSON-encoded latest models.LiveStatus. The live store writes the new value
// before publishing it, so after a crash Restore returns exactly the counts
// that were acknowledged to clients.
//
// Breaker wraps any Journal with a sony/gobreaker circuit breaker. After a
// run of consecutive write failures it opens and fails writes immediately;
// the live store reports these as persistence errors and leaves counters
// unchanged.
//
// # Usage
//
//	j, err := journal.Open(journal.DefaultConfig("data/live"), logger)
//	if err != nil {
//	    return err
//	}
//	defer j.Close()
//
//	guarded := journal.NewBreaker(j, journal.DefaultBreakerConfig(), logger)
//	live := parking.NewLiveStore(catalog, parking.LiveStoreConfig{Journal: guarded}, logger)
//	if _, err := live.Restore(ctx); err != nil {
//	    return err
//	}
package journal
