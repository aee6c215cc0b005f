// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package geo

import (
	"math"
	"sync"
)

// Grid divides the globe into fixed-size cells so that radius queries only
// compute exact distances for points in cells that can intersect the search
// circle.
//
// Time Complexity:
//   - Insert: O(1)
//   - Within: O(c + k) where c = cells in the search box, k = points in them
//
// When the search box covers more cells than are occupied, Within falls back
// to scanning every point, so the result never depends on cell size.
type Grid struct {
	mu       sync.RWMutex
	cells    map[CellKey][]*Point
	points   map[string]*Point
	cellSize float64 // degrees
}

// CellKey identifies one grid cell.
type CellKey struct {
	X, Y int
}

// Point is an entry in the grid. Index is caller-defined ordering, typically
// the position of the point in its source list.
type Point struct {
	ID    string
	Lat   float64
	Lng   float64
	Index int
}

// Hit is a point returned by a radius query along with its exact distance.
type Hit struct {
	Point
	DistanceKm float64
}

// NewGrid creates a grid with cells of roughly cellSizeKm on a side at the
// equator. Non-positive sizes default to 25km.
func NewGrid(cellSizeKm float64) *Grid {
	if cellSizeKm <= 0 {
		cellSizeKm = 25
	}
	return &Grid{
		cells:    make(map[CellKey][]*Point),
		points:   make(map[string]*Point),
		cellSize: cellSizeKm / kmPerDegree,
	}
}

// Insert adds a point. IDs are expected to be unique; the grid is built once
// from a validated catalog.
func (g *Grid) Insert(p Point) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry := p
	key := g.cellKey(entry.Lat, entry.Lng)
	g.cells[key] = append(g.cells[key], &entry)
	g.points[entry.ID] = &entry
}

// Size returns the number of points in the grid.
func (g *Grid) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.points)
}

// Within returns every point whose haversine distance from (lat, lng) is
// strictly less than radiusKm. The order of the returned hits is unspecified.
func (g *Grid) Within(lat, lng, radiusKm float64) []Hit {
	if radiusKm <= 0 {
		return nil
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	keys, all := g.candidateCells(lat, lng, radiusKm)

	var hits []Hit
	collect := func(points []*Point) {
		for _, p := range points {
			d := Haversine(lat, lng, p.Lat, p.Lng)
			if d < radiusKm {
				hits = append(hits, Hit{Point: *p, DistanceKm: d})
			}
		}
	}

	if all {
		for _, cell := range g.cells {
			collect(cell)
		}
		return hits
	}

	for key := range keys {
		collect(g.cells[key])
	}
	return hits
}

// candidateCells returns the set of cells whose area can hold a point within
// radiusKm of the centre. all is true when a full scan is cheaper or when the
// search circle reaches a pole or wraps most of the globe.
func (g *Grid) candidateCells(lat, lng, radiusKm float64) (map[CellKey]struct{}, bool) {
	lng = normalizeLongitude(lng)
	angular := radiusKm / EarthRadiusKm // radians
	if angular >= math.Pi/2 {
		return nil, true
	}

	latRad := toRadians(lat)
	minLat := latRad - angular
	maxLat := latRad + angular
	if minLat <= -math.Pi/2 || maxLat >= math.Pi/2 {
		return nil, true
	}

	// Widest longitude offset reachable on the sphere from this latitude.
	ratio := math.Sin(angular) / math.Cos(latRad)
	if ratio >= 1 {
		return nil, true
	}
	deltaLng := toDegrees(math.Asin(ratio))
	deltaLat := toDegrees(angular)

	// One cell of margin on each side absorbs floating-point edge effects.
	y0 := int(math.Floor((lat-deltaLat)/g.cellSize)) - 1
	y1 := int(math.Floor((lat+deltaLat)/g.cellSize)) + 1
	x0 := int(math.Floor((lng-deltaLng)/g.cellSize)) - 1
	x1 := int(math.Floor((lng+deltaLng)/g.cellSize)) + 1

	span := (y1 - y0 + 1) * (x1 - x0 + 1)
	if span >= len(g.cells) || deltaLng >= 180 {
		return nil, true
	}

	keys := make(map[CellKey]struct{}, span)
	for x := x0; x <= x1; x++ {
		for _, wx := range g.wrapColumn(x) {
			for y := y0; y <= y1; y++ {
				keys[CellKey{X: wx, Y: y}] = struct{}{}
			}
		}
	}
	return keys, false
}

// cellKey returns the cell holding a coordinate, normalising longitude to
// [-180, 180).
func (g *Grid) cellKey(lat, lng float64) CellKey {
	lng = normalizeLongitude(lng)
	return CellKey{
		X: int(math.Floor(lng / g.cellSize)),
		Y: int(math.Floor(lat / g.cellSize)),
	}
}

// wrapColumn maps a column index to the stored columns covering the same
// longitudes. A column that crosses the antimeridian is split into its two
// wrapped sub-ranges, and each sub-range may span several stored columns
// because 360 is rarely a multiple of the cell size.
func (g *Grid) wrapColumn(x int) []int {
	lo := float64(x) * g.cellSize
	hi := lo + g.cellSize
	if lo >= -180 && hi <= 180 {
		return []int{x}
	}

	var cols []int
	switch {
	case hi <= -180:
		cols = g.columnsIn(cols, lo+360, hi+360)
	case lo < -180:
		cols = g.columnsIn(cols, lo+360, 180)
		cols = g.columnsIn(cols, -180, hi)
	case lo >= 180:
		cols = g.columnsIn(cols, lo-360, hi-360)
	default:
		cols = g.columnsIn(cols, lo, 180)
		cols = g.columnsIn(cols, -180, hi-360)
	}
	return cols
}

// columnsIn appends the stored columns overlapping longitudes [a, b), where
// -180 <= a < b <= 180.
func (g *Grid) columnsIn(cols []int, a, b float64) []int {
	if b <= a {
		return cols
	}
	first := int(math.Floor(a / g.cellSize))
	last := int(math.Floor(math.Nextafter(b, a) / g.cellSize))
	for c := first; c <= last; c++ {
		cols = append(cols, c)
	}
	return cols
}

func normalizeLongitude(lng float64) float64 {
	lng = math.Mod(lng+180, 360)
	if lng < 0 {
		lng += 360
	}
	return lng - 180
}
