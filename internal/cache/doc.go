// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

/*
Package cache provides a generic, thread-safe LRU cache with optional TTL.

LRU backs the prediction cache in package predict: forest evaluations are
keyed by model version and features, so repeated rank queries between
retrains skip the forest walk.

# Usage

	c := cache.NewLRU[string, int](1024, 5*time.Minute)
	c.Add("k", 42)
	v, ok := c.Get("k")

	n, hit, err := c.GetOrAdd("k", func() (int, error) { return compute() })

# Thread Safety

All methods are safe for concurrent use. GetOrAdd computes outside the lock,
so two concurrent misses for one key may both call the function; the later
Add wins.
*/
package cache
