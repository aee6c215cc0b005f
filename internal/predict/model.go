// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package predict

import (
	"sync/atomic"
	"time"

	"github.com/tomtom215/parkcast/internal/models"
)

// Model is a fitted forest plus the facts about how it was produced.
// A published Model is immutable.
type Model struct {
	Forest    *Forest
	Version   int
	TrainedAt time.Time
	Rows      int
}

// Predict returns the expected free spots at a position for an hour and
// weekday (Monday = 0). The ensemble mean is truncated toward zero and
// clamped at zero.
func (m *Model) Predict(lat, lng float64, hour, weekday int) int {
	v := int(m.Forest.Predict(NewSample(lat, lng, hour, weekday)))
	if v < 0 {
		return 0
	}
	return v
}

// Handle is the single slot holding the model currently serving predictions.
// Swaps are atomic: a reader that loaded the old model finishes against it.
type Handle struct {
	current atomic.Pointer[Model]
}

// NewHandle returns an empty handle.
func NewHandle() *Handle {
	return &Handle{}
}

// Load returns the current model or nil.
func (h *Handle) Load() *Model {
	return h.current.Load()
}

// Publish installs m and returns the model it replaced.
func (h *Handle) Publish(m *Model) *Model {
	return h.current.Swap(m)
}

// Loaded reports whether a model is serving.
func (h *Handle) Loaded() bool {
	return h.current.Load() != nil
}

// Version returns the serving model version, or 0 when empty.
func (h *Handle) Version() int {
	if m := h.current.Load(); m != nil {
		return m.Version
	}
	return 0
}

// Predict evaluates the serving model. It returns ErrModelUnavailable when
// nothing has been published yet.
func (h *Handle) Predict(lat, lng float64, hour, weekday int) (int, error) {
	m := h.current.Load()
	if m == nil || m.Forest == nil {
		return 0, models.ErrModelUnavailable
	}
	return m.Predict(lat, lng, hour, weekday), nil
}
