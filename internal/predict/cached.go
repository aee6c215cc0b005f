// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package predict

import (
	"github.com/tomtom215/parkcast/internal/cache"
	"github.com/tomtom215/parkcast/internal/metrics"
	"github.com/tomtom215/parkcast/internal/models"
)

// predictionKey identifies one forest evaluation. Entries for a replaced
// model are never hit again and age out of the LRU.
type predictionKey struct {
	version int
	lat     float64
	lng     float64
	hour    int
	weekday int
}

// CachedPredictor memoizes Handle predictions per model version.
type CachedPredictor struct {
	handle *Handle
	lru    *cache.LRU[predictionKey, int]
}

// NewCachedPredictor wraps handle with an LRU of the given capacity.
func NewCachedPredictor(handle *Handle, capacity int) *CachedPredictor {
	return &CachedPredictor{
		handle: handle,
		lru:    cache.NewLRU[predictionKey, int](capacity, 0),
	}
}

// Predict returns the serving model's prediction, from cache when the same
// model already answered the same inputs.
func (c *CachedPredictor) Predict(lat, lng float64, hour, weekday int) (int, error) {
	m := c.handle.Load()
	if m == nil || m.Forest == nil {
		return 0, models.ErrModelUnavailable
	}

	key := predictionKey{version: m.Version, lat: lat, lng: lng, hour: hour, weekday: weekday}
	n, hit, err := c.lru.GetOrAdd(key, func() (int, error) {
		return m.Predict(lat, lng, hour, weekday), nil
	})
	metrics.RecordPredictionCache(hit)
	return n, err
}

// Stats returns cache counters.
func (c *CachedPredictor) Stats() cache.Stats {
	return c.lru.Stats()
}
