// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package corpus

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/tomtom215/parkcast/internal/models"
)

var testLandmarks = []models.Landmark{
	{Name: "City Centre Mall", Lat: 26.152, Lng: 91.776, TotalCapacity: 120},
	{Name: "Guwahati Railway Station", Lat: 26.181, Lng: 91.750, TotalCapacity: 300},
	{Name: "Gateway of India Parking", Lat: 18.922, Lng: 72.834, TotalCapacity: 80},
}

func TestGenerate(t *testing.T) {
	now := time.Date(2026, 10, 14, 17, 30, 0, 0, time.UTC)
	rows := Generate(testLandmarks, 2000, 42, now)

	if len(rows) != 2000 {
		t.Fatalf("Generate() returned %d rows, want 2000", len(rows))
	}

	seen := make(map[string]bool)
	for i, r := range rows {
		seen[r.Name] = true
		if r.Hour < 0 || r.Hour > 23 {
			t.Fatalf("row %d hour = %d", i, r.Hour)
		}
		if r.Day < 0 || r.Day > 6 {
			t.Fatalf("row %d day = %d", i, r.Day)
		}
		if r.AvailableSpots < 0 || r.AvailableSpots > r.TotalCapacity {
			t.Fatalf("row %d available = %d of %d", i, r.AvailableSpots, r.TotalCapacity)
		}

		occupied := 1 - float64(r.AvailableSpots)/float64(r.TotalCapacity)
		weekendMall := r.Day >= 5 && strings.Contains(r.Name, "Mall")
		// Truncation can only raise the observed occupancy by under one spot.
		slack := 1 / float64(r.TotalCapacity)
		if weekendMall && (occupied < 0.8 || occupied > 0.95+slack) {
			t.Errorf("row %d weekend mall occupancy %.3f outside [0.8, 0.95]", i, occupied)
		}
		if !weekendMall && (occupied < 0.2 || occupied > 0.6+slack) {
			t.Errorf("row %d occupancy %.3f outside [0.2, 0.6]", i, occupied)
		}
	}
	if len(seen) != len(testLandmarks) {
		t.Errorf("Generate() covered %d landmarks, want %d", len(seen), len(testLandmarks))
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	now := time.Date(2026, 10, 14, 17, 30, 0, 0, time.UTC)
	a := Generate(testLandmarks, 100, 42, now)
	b := Generate(testLandmarks, 100, 42, now)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed produced different rows")
	}
	c := Generate(testLandmarks, 100, 43, now)
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds produced identical rows")
	}
}

func TestGenerate_Empty(t *testing.T) {
	if rows := Generate(nil, 10, 1, time.Now()); rows != nil {
		t.Errorf("Generate(no landmarks) = %v, want nil", rows)
	}
	if rows := Generate(testLandmarks, 0, 1, time.Now()); rows != nil {
		t.Errorf("Generate(n=0) = %v, want nil", rows)
	}
}
