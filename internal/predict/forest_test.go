// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package predict

import (
	"context"
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/tomtom215/parkcast/internal/models"
)

// stepData returns samples whose target jumps from low to high at lat 0.5.
func stepData(n int) (x []Sample, y []float64) {
	x = make([]Sample, n)
	y = make([]float64, n)
	for i := 0; i < n; i++ {
		lat := float64(i) / float64(n)
		x[i] = Sample{lat, 0, float64(i % 24), float64(i % 7)}
		if lat < 0.5 {
			y[i] = 10
		} else {
			y[i] = 50
		}
	}
	return x, y
}

func TestFit_Empty(t *testing.T) {
	_, err := Fit(context.Background(), nil, nil, DefaultForestConfig())
	if !errors.Is(err, models.ErrEmptyCorpus) {
		t.Fatalf("Fit(empty) error = %v, want ErrEmptyCorpus", err)
	}

	_, err = FitObservations(context.Background(), []models.Observation{}, DefaultForestConfig())
	if !errors.Is(err, models.ErrEmptyCorpus) {
		t.Fatalf("FitObservations(empty) error = %v, want ErrEmptyCorpus", err)
	}
}

func TestFit_LengthMismatch(t *testing.T) {
	x, y := stepData(10)
	if _, err := Fit(context.Background(), x, y[:5], DefaultForestConfig()); err == nil {
		t.Fatal("Fit() with mismatched lengths should fail")
	}
}

func TestFit_LearnsStep(t *testing.T) {
	x, y := stepData(400)
	cfg := DefaultForestConfig()
	cfg.Trees = 20

	f, err := Fit(context.Background(), x, y, cfg)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if len(f.Trees) != 20 {
		t.Fatalf("len(Trees) = %d, want 20", len(f.Trees))
	}

	tests := []struct {
		lat  float64
		want float64
	}{
		{0.1, 10},
		{0.3, 10},
		{0.7, 50},
		{0.95, 50},
	}
	for _, tt := range tests {
		got := f.Predict(Sample{tt.lat, 0, 5, 3})
		if math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("Predict(lat=%v) = %v, want %v", tt.lat, got, tt.want)
		}
	}
}

func TestFit_DeterministicAcrossWorkers(t *testing.T) {
	x, y := stepData(300)
	for i := range y {
		y[i] += float64(i % 13)
	}

	cfg := DefaultForestConfig()
	cfg.Trees = 12
	cfg.Workers = 1
	serial, err := Fit(context.Background(), x, y, cfg)
	if err != nil {
		t.Fatalf("Fit(workers=1) error = %v", err)
	}

	cfg.Workers = 6
	parallel, err := Fit(context.Background(), x, y, cfg)
	if err != nil {
		t.Fatalf("Fit(workers=6) error = %v", err)
	}

	if !reflect.DeepEqual(serial, parallel) {
		t.Error("forest differs between 1 and 6 workers")
	}

	cfg.Seed = 7
	other, err := Fit(context.Background(), x, y, cfg)
	if err != nil {
		t.Fatalf("Fit(seed=7) error = %v", err)
	}
	if reflect.DeepEqual(serial, other) {
		t.Error("different seeds produced identical forests")
	}
}

func TestFit_MaxDepth(t *testing.T) {
	x, y := stepData(200)
	for i := range y {
		y[i] += float64(i % 5)
	}
	cfg := DefaultForestConfig()
	cfg.Trees = 5
	cfg.MaxDepth = 2

	f, err := Fit(context.Background(), x, y, cfg)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	for i, tree := range f.Trees {
		if d := tree.Depth(); d > 2 {
			t.Errorf("tree %d depth = %d, want <= 2", i, d)
		}
	}
	if d := f.MaxDepth(); d < 1 || d > 2 {
		t.Errorf("MaxDepth() = %d, want 1 or 2", d)
	}
}

func TestFit_MinSamplesLeafPreventsSplit(t *testing.T) {
	x, y := stepData(50)
	cfg := DefaultForestConfig()
	cfg.Trees = 3
	cfg.MinSamplesLeaf = 50

	f, err := Fit(context.Background(), x, y, cfg)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	for i, tree := range f.Trees {
		if len(tree.Nodes) != 1 {
			t.Errorf("tree %d has %d nodes, want a single leaf", i, len(tree.Nodes))
		}
	}
}

func TestFit_ConstantTarget(t *testing.T) {
	x, _ := stepData(40)
	y := make([]float64, len(x))
	for i := range y {
		y[i] = 7
	}
	cfg := DefaultForestConfig()
	cfg.Trees = 4

	f, err := Fit(context.Background(), x, y, cfg)
	if err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	if f.Size() != 4 {
		t.Errorf("Size() = %d, want 4 single-leaf trees", f.Size())
	}
	if got := f.Predict(Sample{0.3, 0, 0, 0}); got != 7 {
		t.Errorf("Predict() = %v, want 7", got)
	}
}

func TestFit_Cancelled(t *testing.T) {
	x, y := stepData(100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fit(ctx, x, y, DefaultForestConfig())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Fit() error = %v, want context.Canceled", err)
	}
}

func TestFitObservations(t *testing.T) {
	var rows []models.Observation
	for day := 0; day < 7; day++ {
		for hour := 0; hour < 24; hour++ {
			avail := 8
			if hour >= 9 && hour < 18 {
				avail = 1
			}
			rows = append(rows, models.Observation{
				Name: "Main Gate", Lat: 10, Lng: 20,
				Hour: hour, Day: day,
				AvailableSpots: avail, TotalCapacity: 10,
			})
		}
	}

	cfg := DefaultForestConfig()
	cfg.Trees = 10
	f, err := FitObservations(context.Background(), rows, cfg)
	if err != nil {
		t.Fatalf("FitObservations() error = %v", err)
	}

	m := &Model{Forest: f, Version: 1, Rows: len(rows)}
	if got := m.Predict(10, 20, 3, 2); got != 8 {
		t.Errorf("Predict(night) = %d, want 8", got)
	}
	if got := m.Predict(10, 20, 13, 2); got != 1 {
		t.Errorf("Predict(midday) = %d, want 1", got)
	}
}

func TestTree_Predict(t *testing.T) {
	tree := Tree{Nodes: []Node{
		{Feature: FeatureHour, Threshold: 12, Left: 1, Right: 2},
		{Left: -1, Right: -1, Value: 3},
		{Left: -1, Right: -1, Value: 9},
	}}

	tests := []struct {
		hour int
		want float64
	}{
		{0, 3},
		{12, 3},
		{13, 9},
	}
	for _, tt := range tests {
		x := NewSample(0, 0, tt.hour, 0)
		if got := tree.Predict(&x); got != tt.want {
			t.Errorf("Predict(hour=%d) = %v, want %v", tt.hour, got, tt.want)
		}
	}
	if d := tree.Depth(); d != 1 {
		t.Errorf("Depth() = %d, want 1", d)
	}
	if d := (&Forest{Trees: []Tree{tree, {Nodes: []Node{{Left: -1, Right: -1}}}}}).MaxDepth(); d != 1 {
		t.Errorf("MaxDepth() = %d, want 1", d)
	}
}
