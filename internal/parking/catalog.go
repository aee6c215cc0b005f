// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package parking

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tomtom215/parkcast/internal/geo"
	"github.com/tomtom215/parkcast/internal/models"
)

// DefaultSeedRatio is the share of capacity a landmark starts with as free spots.
const DefaultSeedRatio = 0.4

// Catalog is an immutable, ordered set of landmarks keyed by name.
type Catalog struct {
	landmarks []models.Landmark
	index     map[string]int
}

// NewCatalog validates landmarks and builds a catalog preserving their order.
func NewCatalog(landmarks []models.Landmark) (*Catalog, error) {
	c := &Catalog{
		landmarks: make([]models.Landmark, 0, len(landmarks)),
		index:     make(map[string]int, len(landmarks)),
	}
	for i, lm := range landmarks {
		if err := validateLandmark(lm); err != nil {
			return nil, fmt.Errorf("landmark %d: %w", i, err)
		}
		if _, dup := c.index[lm.Name]; dup {
			return nil, fmt.Errorf("landmark %d: %w", i,
				&models.ValidationError{Field: "name", Reason: fmt.Sprintf("duplicate landmark %q", lm.Name)})
		}
		c.index[lm.Name] = len(c.landmarks)
		c.landmarks = append(c.landmarks, lm)
	}
	return c, nil
}

func validateLandmark(lm models.Landmark) error {
	if strings.TrimSpace(lm.Name) == "" {
		return &models.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !geo.ValidCoordinate(lm.Lat, lm.Lng) {
		return &models.ValidationError{Field: "coordinates",
			Reason: fmt.Sprintf("%q has out-of-range position (%v, %v)", lm.Name, lm.Lat, lm.Lng)}
	}
	if lm.TotalCapacity <= 0 {
		return &models.ValidationError{Field: "total_capacity",
			Reason: fmt.Sprintf("%q must have positive capacity, got %d", lm.Name, lm.TotalCapacity)}
	}
	return nil
}

// Get returns the landmark with the given name.
func (c *Catalog) Get(name string) (models.Landmark, bool) {
	i, ok := c.index[name]
	if !ok {
		return models.Landmark{}, false
	}
	return c.landmarks[i], true
}

// Position returns the catalog order of a landmark, or -1.
func (c *Catalog) Position(name string) int {
	if i, ok := c.index[name]; ok {
		return i
	}
	return -1
}

// All returns a copy of the landmarks in catalog order.
func (c *Catalog) All() []models.Landmark {
	out := make([]models.Landmark, len(c.landmarks))
	copy(out, c.landmarks)
	return out
}

// Len returns the number of landmarks.
func (c *Catalog) Len() int {
	return len(c.landmarks)
}

// SeedAvailable returns the initial free-spot count for a capacity, truncated
// toward zero.
func SeedAvailable(capacity int, ratio float64) int {
	n := int(float64(capacity) * ratio)
	if n < 0 {
		return 0
	}
	if n > capacity {
		return capacity
	}
	return n
}

// LoadCatalogCSV reads landmarks from a CSV file with a header row containing
// at least name, lat, lng and total_capacity. Other columns are ignored, so the
// training corpus itself can seed the catalog. Repeated names keep their first
// row.
func LoadCatalogCSV(path string) (*Catalog, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, &models.PersistError{Op: "open catalog", Path: path, Err: err}
	}
	defer f.Close()

	landmarks, err := readCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return NewCatalog(landmarks)
}

func readCatalog(r io.Reader) ([]models.Landmark, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, required := range []string{"name", "lat", "lng", "total_capacity"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	seen := make(map[string]bool)
	var landmarks []models.Landmark
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		name := strings.TrimSpace(rec[cols["name"]])
		if seen[name] {
			continue
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(rec[cols["lat"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: lat: %w", line, err)
		}
		lng, err := strconv.ParseFloat(strings.TrimSpace(rec[cols["lng"]]), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: lng: %w", line, err)
		}
		capacity, err := strconv.Atoi(strings.TrimSpace(rec[cols["total_capacity"]]))
		if err != nil {
			return nil, fmt.Errorf("line %d: total_capacity: %w", line, err)
		}

		seen[name] = true
		landmarks = append(landmarks, models.Landmark{Name: name, Lat: lat, Lng: lng, TotalCapacity: capacity})
	}
	return landmarks, nil
}

// DefaultLandmarks returns the built-in landmark set used when no catalog file
// is configured.
func DefaultLandmarks() []models.Landmark {
	return []models.Landmark{
		// Guwahati
		{Name: "City Centre Mall", Lat: 26.152, Lng: 91.776, TotalCapacity: 120},
		{Name: "Guwahati Railway Station", Lat: 26.181, Lng: 91.750, TotalCapacity: 300},
		{Name: "Indira Gandhi Athletic Stadium", Lat: 26.111, Lng: 91.761, TotalCapacity: 500},
		// Mumbai
		{Name: "Phoenix Marketcity", Lat: 19.088, Lng: 72.882, TotalCapacity: 400},
		{Name: "Gateway of India Parking", Lat: 18.922, Lng: 72.834, TotalCapacity: 80},
		{Name: "Chhatrapati Shivaji Terminus", Lat: 18.940, Lng: 72.835, TotalCapacity: 150},
		// Delhi
		{Name: "Select CITYWALK", Lat: 28.528, Lng: 77.218, TotalCapacity: 350},
		{Name: "Connaught Place", Lat: 28.631, Lng: 77.219, TotalCapacity: 200},
		{Name: "India Gate Parking", Lat: 28.612, Lng: 77.229, TotalCapacity: 100},
		// Bengaluru
		{Name: "UB City Mall", Lat: 12.971, Lng: 77.595, TotalCapacity: 200},
		{Name: "M Chinnaswamy Stadium", Lat: 12.978, Lng: 77.599, TotalCapacity: 600},
	}
}
