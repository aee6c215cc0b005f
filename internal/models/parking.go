// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package models

import (
	"strings"
	"time"
)

// Landmark is a named location where parking availability is tracked.
// Landmarks are unique by Name and immutable once the catalog is loaded.
type Landmark struct {
	Name          string  `json:"name"`
	Lat           float64 `json:"lat"`
	Lng           float64 `json:"lng"`
	TotalCapacity int     `json:"total_capacity"`
}

// LiveStatus is the current crowd-reported free-spot count for one landmark.
// Available always stays within [0, TotalCapacity].
type LiveStatus struct {
	Name          string    `json:"name"`
	Available     int       `json:"available"`
	TotalCapacity int       `json:"total_capacity"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Observation is one row of the historical training corpus.
// Day uses Monday=0 numbering.
type Observation struct {
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	Hour           int     `json:"hour"`
	Day            int     `json:"day"`
	AvailableSpots int     `json:"available_spots"`
	TotalCapacity  int     `json:"total_capacity"`
}

// Spot is one ranked landmark as returned to clients.
//
// LiveCount is the crowd-reported count, MLCount the model prediction (0 when
// no model is loaded) and FusedCount a weighted blend of both. Distance is in
// kilometres, rounded to one decimal place.
type Spot struct {
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	LiveCount  int     `json:"live_count"`
	MLCount    int     `json:"ml_count"`
	FusedCount int     `json:"fused_count"`
	Distance   float64 `json:"distance"`
}

// Action is a user-reported occupancy change.
type Action string

const (
	// ActionPark means a user took a spot.
	ActionPark Action = "park"
	// ActionLeave means a user freed a spot.
	ActionLeave Action = "leave"
)

// ParseAction converts a raw action string. Matching ignores surrounding
// whitespace and case.
func ParseAction(s string) (Action, error) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionPark:
		return ActionPark, nil
	case ActionLeave:
		return ActionLeave, nil
	default:
		return "", &ValidationError{Field: "action", Reason: "must be one of: park leave"}
	}
}

// Weekday returns the day of week for t with Monday=0 and Sunday=6.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}
