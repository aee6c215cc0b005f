// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package corpus

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/parkcast/internal/models"
)

func obs(name string, hour, day, avail int) models.Observation {
	return models.Observation{
		Name: name, Lat: 10.5, Lng: 20.25,
		Hour: hour, Day: day,
		AvailableSpots: avail, TotalCapacity: 10,
	}
}

func TestReadCSV(t *testing.T) {
	input := "name,lat,lng,hour,day,available_spots,total_capacity\n" +
		"City Centre Mall,26.152,91.776,17,5,14,120\n" +
		"Connaught Place,28.631,77.219,9,0,80.0,200\n"

	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	want := []models.Observation{
		{Name: "City Centre Mall", Lat: 26.152, Lng: 91.776, Hour: 17, Day: 5, AvailableSpots: 14, TotalCapacity: 120},
		{Name: "Connaught Place", Lat: 28.631, Lng: 77.219, Hour: 9, Day: 0, AvailableSpots: 80, TotalCapacity: 200},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("ReadCSV() = %+v, want %+v", rows, want)
	}
}

func TestReadCSV_ColumnOrderAndExtras(t *testing.T) {
	input := "total_capacity,day,extra,hour,available_spots,lng,lat,name\n" +
		"10,3,x,12,4,20,10,Main Gate\n"

	rows, err := ReadCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	want := models.Observation{Name: "Main Gate", Lat: 10, Lng: 20, Hour: 12, Day: 3, AvailableSpots: 4, TotalCapacity: 10}
	if len(rows) != 1 || rows[0] != want {
		t.Errorf("ReadCSV() = %+v, want [%+v]", rows, want)
	}
}

func TestReadCSV_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"missing column", "name,lat,lng,hour,day,total_capacity\nA,1,2,3,4,5\n"},
		{"bad float", "name,lat,lng,hour,day,available_spots,total_capacity\nA,x,2,3,4,5,6\n"},
		{"fractional int", "name,lat,lng,hour,day,available_spots,total_capacity\nA,1,2,3.5,4,5,6\n"},
		{"ragged row", "name,lat,lng,hour,day,available_spots,total_capacity\nA,1,2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadCSV(strings.NewReader(tt.input)); err == nil {
				t.Error("ReadCSV() should fail")
			}
		})
	}
}

func TestReadCSV_Empty(t *testing.T) {
	rows, err := ReadCSV(strings.NewReader(""))
	if err != nil || len(rows) != 0 {
		t.Errorf("ReadCSV(empty) = %v, %v; want empty, nil", rows, err)
	}
}

func TestWriteCSV_RoundTripsThroughReader(t *testing.T) {
	rows := []models.Observation{obs("Main Gate", 8, 1, 4), obs("Quote, \"Inc\"", 9, 2, 0)}

	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows); err != nil {
		t.Fatalf("WriteCSV() error = %v", err)
	}
	if !strings.HasPrefix(buf.String(), "name,lat,lng,hour,day,available_spots,total_capacity\n") {
		t.Errorf("unexpected header in %q", buf.String())
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV() error = %v", err)
	}
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("round trip = %+v, want %+v", got, rows)
	}
}

func TestCSVStore_Append(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parking_data.csv")
	store := NewCSVStore(CSVConfig{Path: path, CreateIfMissing: true}, zerolog.Nop())
	ctx := context.Background()

	rows, err := store.Load(ctx)
	if err != nil || len(rows) != 0 {
		t.Fatalf("Load() on missing file = %v, %v; want empty, nil", rows, err)
	}

	full, err := store.Append(ctx, []models.Observation{obs("A", 1, 0, 3)})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if len(full) != 1 {
		t.Fatalf("Append() returned %d rows, want 1", len(full))
	}

	full, err = store.Append(ctx, []models.Observation{obs("B", 2, 0, 4), obs("C", 3, 0, 5)})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if len(full) != 3 || full[0].Name != "A" || full[2].Name != "C" {
		t.Errorf("Append() = %+v, want A,B,C", full)
	}

	n, err := store.Len(ctx)
	if err != nil || n != 3 {
		t.Errorf("Len() = %d, %v; want 3, nil", n, err)
	}

	// No temp files left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the corpus file", len(entries))
	}
}

func TestCSVStore_MissingFileWithoutCreate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.csv")
	store := NewCSVStore(CSVConfig{Path: path}, zerolog.Nop())

	_, err := store.Append(context.Background(), []models.Observation{obs("A", 1, 0, 3)})
	var pe *models.PersistError
	if !errors.As(err, &pe) {
		t.Fatalf("Append() error = %v, want *PersistError", err)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Append() error = %v, want to wrap fs.ErrNotExist", err)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, fs.ErrNotExist) {
		t.Error("failed append must not create the file")
	}
}

func TestCSVStore_CorruptFileLeftUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parking_data.csv")
	corrupt := "name,lat\nA,not-a-number\n"
	if err := os.WriteFile(path, []byte(corrupt), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewCSVStore(CSVConfig{Path: path}, zerolog.Nop())

	_, err := store.Append(context.Background(), []models.Observation{obs("A", 1, 0, 3)})
	if !errors.Is(err, models.ErrPersist) {
		t.Fatalf("Append() error = %v, want persist error", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != corrupt {
		t.Error("corrupt corpus was modified by a failed append")
	}
}

func TestCSVStore_Retention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parking_data.csv")
	store := NewCSVStore(CSVConfig{Path: path, MaxRows: 3, CreateIfMissing: true}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := store.Append(ctx, []models.Observation{obs("L", i, 0, i)}); err != nil {
			t.Fatalf("Append(%d) error = %v", i, err)
		}
	}

	rows, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Load() returned %d rows, want 3", len(rows))
	}
	for i, want := range []int{2, 3, 4} {
		if rows[i].Hour != want {
			t.Errorf("rows[%d].Hour = %d, want %d", i, rows[i].Hour, want)
		}
	}
}

func TestCSVStore_CancelledContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "parking_data.csv")
	store := NewCSVStore(CSVConfig{Path: path, CreateIfMissing: true}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Append(ctx, []models.Observation{obs("A", 1, 0, 3)}); !errors.Is(err, context.Canceled) {
		t.Errorf("Append() error = %v, want context.Canceled", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, Config{Backend: BackendCSV, CSVPath: filepath.Join(t.TempDir(), "c.csv")}, zerolog.Nop())
	if err != nil {
		t.Fatalf("Open(csv) error = %v", err)
	}
	if _, ok := s.(*CSVStore); !ok {
		t.Errorf("Open(csv) returned %T", s)
	}

	if _, err := Open(ctx, Config{Backend: "parquet"}, zerolog.Nop()); err == nil {
		t.Error("Open(unknown backend) should fail")
	}
}
