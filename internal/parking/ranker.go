// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package parking

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/parkcast/internal/geo"
	"github.com/tomtom215/parkcast/internal/metrics"
	"github.com/tomtom215/parkcast/internal/models"
)

// Predictor estimates free spots at a location for an hour (0-23) and
// weekday (Monday=0).
type Predictor interface {
	Predict(lat, lng float64, hour, weekday int) (int, error)
}

// RankerConfig configures a Ranker.
type RankerConfig struct {
	// DefaultRadiusKm applies when a query has no radius. Default: 100
	DefaultRadiusKm float64

	// DefaultTopK applies when a query has no top_k. Default: 10
	DefaultTopK int

	// MaxTopK caps top_k. Default: 100
	MaxTopK int

	// LiveWeight is the share of the live count in the fused count. Default: 0.8
	LiveWeight float64

	// GridCellKm sizes the spatial index cells. Default: 25
	GridCellKm float64

	// Location is the timezone used to derive hour and weekday. Default: time.Local
	Location *time.Location

	// Now overrides the clock (tests).
	Now func() time.Time
}

// DefaultRankerConfig returns the default ranking configuration.
func DefaultRankerConfig() RankerConfig {
	return RankerConfig{
		DefaultRadiusKm: 100,
		DefaultTopK:     10,
		MaxTopK:         100,
		LiveWeight:      0.8,
		GridCellKm:      25,
		Location:        time.Local,
	}
}

// Query is a rank request. Zero RadiusKm and TopK select the defaults.
type Query struct {
	Lat      float64
	Lng      float64
	RadiusKm float64
	TopK     int
}

// Ranker orders catalog landmarks by distance from a query point and
// attaches live and predicted availability.
type Ranker struct {
	catalog   *Catalog
	live      *LiveStore
	predictor Predictor
	grid      *geo.Grid
	cfg       RankerConfig
	logger    zerolog.Logger
}

// NewRanker builds the spatial index over catalog. predictor may be nil, in
// which case every ml_count is zero.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func NewRanker(catalog *Catalog, live *LiveStore, predictor Predictor, cfg RankerConfig, logger zerolog.Logger) *Ranker {
	defaults := DefaultRankerConfig()
	if cfg.DefaultRadiusKm <= 0 {
		cfg.DefaultRadiusKm = defaults.DefaultRadiusKm
	}
	if cfg.DefaultTopK <= 0 {
		cfg.DefaultTopK = defaults.DefaultTopK
	}
	if cfg.MaxTopK <= 0 {
		cfg.MaxTopK = defaults.MaxTopK
	}
	if cfg.DefaultTopK > cfg.MaxTopK {
		cfg.DefaultTopK = cfg.MaxTopK
	}
	if cfg.LiveWeight < 0 || cfg.LiveWeight > 1 {
		cfg.LiveWeight = defaults.LiveWeight
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	grid := geo.NewGrid(cfg.GridCellKm)
	for i, lm := range catalog.All() {
		grid.Insert(geo.Point{ID: lm.Name, Lat: lm.Lat, Lng: lm.Lng, Index: i})
	}

	return &Ranker{
		catalog:   catalog,
		live:      live,
		predictor: predictor,
		grid:      grid,
		cfg:       cfg,
		logger:    logger.With().Str("component", "ranker").Logger(),
	}
}

// Rank returns landmarks strictly within the radius, nearest first, ties in
// catalog order, truncated to top_k. Distances are rounded to one decimal in
// the output only.
func (r *Ranker) Rank(ctx context.Context, q Query) ([]models.Spot, error) {
	start := time.Now()
	spots, err := r.rank(ctx, q)
	metrics.RecordRankQuery(time.Since(start), len(spots), err, errors.Is(err, models.ErrValidation))
	return spots, err
}

func (r *Ranker) rank(ctx context.Context, q Query) ([]models.Spot, error) {
	q, err := r.normalize(q)
	if err != nil {
		return nil, err
	}

	hits := r.grid.Within(q.Lat, q.Lng, q.RadiusKm)
	slices.SortStableFunc(hits, func(a, b geo.Hit) int {
		if c := cmp.Compare(a.DistanceKm, b.DistanceKm); c != 0 {
			return c
		}
		return cmp.Compare(a.Index, b.Index)
	})
	if len(hits) > q.TopK {
		hits = hits[:q.TopK]
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}

	now := r.cfg.Now().In(r.cfg.Location)
	hour, weekday := now.Hour(), models.Weekday(now)

	spots := make([]models.Spot, 0, len(hits))
	for _, h := range hits {
		lm, _ := r.catalog.Get(h.ID)
		status, _ := r.live.Get(h.ID)
		predicted := r.predict(lm, hour, weekday)

		spots = append(spots, models.Spot{
			Name:       lm.Name,
			Lat:        lm.Lat,
			Lng:        lm.Lng,
			LiveCount:  status.Available,
			MLCount:    predicted,
			FusedCount: r.fuse(status.Available, predicted),
			Distance:   geo.RoundTo(h.DistanceKm, 1),
		})
	}
	return spots, nil
}

// predict never fails: any predictor error degrades to zero.
func (r *Ranker) predict(lm models.Landmark, hour, weekday int) int {
	if r.predictor == nil {
		metrics.RecordPredictionFallback("unavailable")
		return 0
	}
	n, err := r.predictor.Predict(lm.Lat, lm.Lng, hour, weekday)
	if err != nil {
		if errors.Is(err, models.ErrModelUnavailable) {
			metrics.RecordPredictionFallback("unavailable")
		} else {
			metrics.RecordPredictionFallback("error")
			r.logger.Warn().Err(err).Str("landmark", lm.Name).Msg("prediction failed, using 0")
		}
		return 0
	}
	return max(n, 0)
}

func (r *Ranker) fuse(live, predicted int) int {
	w := r.cfg.LiveWeight
	return int(math.Round(w*float64(live) + (1-w)*float64(predicted)))
}

func (r *Ranker) normalize(q Query) (Query, error) {
	if !geo.ValidCoordinate(q.Lat, q.Lng) {
		return q, &models.ValidationError{Field: "coordinates",
			Reason: fmt.Sprintf("(%v, %v) is not a valid latitude/longitude", q.Lat, q.Lng)}
	}

	switch {
	case math.IsNaN(q.RadiusKm) || q.RadiusKm < 0 || math.IsInf(q.RadiusKm, 0):
		return q, &models.ValidationError{Field: "radius_km", Reason: "must be a positive number"}
	case q.RadiusKm == 0:
		q.RadiusKm = r.cfg.DefaultRadiusKm
	}

	switch {
	case q.TopK < 0:
		return q, &models.ValidationError{Field: "top_k", Reason: "must be positive"}
	case q.TopK == 0:
		q.TopK = r.cfg.DefaultTopK
	case q.TopK > r.cfg.MaxTopK:
		q.TopK = r.cfg.MaxTopK
	}
	return q, nil
}

// Overview returns every landmark with its live status, in catalog order.
func (r *Ranker) Overview() []LandmarkStatus {
	statuses := r.live.Snapshot()
	out := make([]LandmarkStatus, len(statuses))
	for i, st := range statuses {
		lm, _ := r.catalog.Get(st.Name)
		out[i] = LandmarkStatus{Landmark: lm, Available: st.Available, UpdatedAt: st.UpdatedAt}
	}
	return out
}

// LandmarkStatus pairs a landmark with its live counter.
type LandmarkStatus struct {
	models.Landmark
	Available int       `json:"available"`
	UpdatedAt time.Time `json:"updated_at"`
}
