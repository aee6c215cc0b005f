// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package corpus

import (
	"math/rand/v2"
	"strings"
	"time"

	"github.com/tomtom215/parkcast/internal/models"
)

// Window is the span of history Generate spreads observations over.
const Window = 30 * 24 * time.Hour

// Generate produces n synthetic observations over the 30 days before now.
// Malls fill up on weekends (80 to 95% occupied); everything else sits
// between 20 and 60% occupancy. The same seed yields the same rows.
func Generate(landmarks []models.Landmark, n int, seed uint64, now time.Time) []models.Observation {
	if len(landmarks) == 0 || n <= 0 {
		return nil
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // synthetic data, not security

	rows := make([]models.Observation, n)
	for i := range rows {
		lm := landmarks[rng.IntN(len(landmarks))]
		ts := now.Add(-time.Duration(rng.IntN(30))*24*time.Hour - time.Duration(rng.IntN(24))*time.Hour)
		day := models.Weekday(ts)

		var occupancy float64
		if day >= 5 && strings.Contains(lm.Name, "Mall") {
			occupancy = 0.8 + rng.Float64()*0.15
		} else {
			occupancy = 0.2 + rng.Float64()*0.4
		}

		rows[i] = models.Observation{
			Name:           lm.Name,
			Lat:            lm.Lat,
			Lng:            lm.Lng,
			Hour:           ts.Hour(),
			Day:            day,
			AvailableSpots: int(float64(lm.TotalCapacity) * (1 - occupancy)),
			TotalCapacity:  lm.TotalCapacity,
		}
	}
	return rows
}
