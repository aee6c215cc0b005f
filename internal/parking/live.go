// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package parking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/parkcast/internal/metrics"
	"github.com/tomtom215/parkcast/internal/models"
)

// Journal persists live counters so they survive a restart.
type Journal interface {
	// Record durably stores the new status of one landmark.
	Record(ctx context.Context, status models.LiveStatus) error
	// Restore returns the last recorded free-spot count per landmark name.
	Restore(ctx context.Context) (map[string]int, error)
}

// LiveStoreConfig configures a LiveStore.
type LiveStoreConfig struct {
	// SeedRatio sets each landmark's initial free spots as a share of capacity.
	SeedRatio float64

	// Journal is optional; nil keeps counters in memory only.
	Journal Journal

	// Now overrides the clock (tests).
	Now func() time.Time
}

// liveEntry is one landmark's counter. capacity never changes.
type liveEntry struct {
	mu        sync.Mutex
	name      string
	available int
	capacity  int
	updatedAt time.Time
}

// LiveStore holds the crowd-reported free-spot counter for every catalog
// landmark.
//
// Lock order: barrier (shared for events, exclusive for snapshots), then the
// landmark's own mutex. The entries map is fixed at construction and read
// without locking.
type LiveStore struct {
	barrier sync.RWMutex
	entries map[string]*liveEntry
	order   []*liveEntry
	journal Journal
	now     func() time.Time
	logger  zerolog.Logger
}

// NewLiveStore creates a counter per catalog landmark seeded at
// SeedAvailable(capacity, cfg.SeedRatio).
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func NewLiveStore(catalog *Catalog, cfg LiveStoreConfig, logger zerolog.Logger) *LiveStore {
	if cfg.SeedRatio <= 0 || cfg.SeedRatio > 1 {
		cfg.SeedRatio = DefaultSeedRatio
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	s := &LiveStore{
		entries: make(map[string]*liveEntry, catalog.Len()),
		order:   make([]*liveEntry, 0, catalog.Len()),
		journal: cfg.Journal,
		now:     now,
		logger:  logger.With().Str("component", "live-store").Logger(),
	}

	seededAt := now()
	for _, lm := range catalog.All() {
		e := &liveEntry{
			name:      lm.Name,
			available: SeedAvailable(lm.TotalCapacity, cfg.SeedRatio),
			capacity:  lm.TotalCapacity,
			updatedAt: seededAt,
		}
		s.entries[lm.Name] = e
		s.order = append(s.order, e)
		metrics.SetLiveAvailable(lm.Name, e.available)
	}
	return s
}

// Restore loads journalled counters over the seeded values. Counts are
// clamped into [0, capacity] and names not in the catalog are skipped.
// It returns the number of landmarks restored.
func (s *LiveStore) Restore(ctx context.Context) (int, error) {
	if s.journal == nil {
		return 0, nil
	}

	saved, err := s.journal.Restore(ctx)
	if err != nil {
		return 0, asPersistError("restore live journal", err)
	}

	s.barrier.Lock()
	defer s.barrier.Unlock()

	restored := 0
	for name, available := range saved {
		e, ok := s.entries[name]
		if !ok {
			s.logger.Debug().Str("landmark", name).Msg("ignoring journal entry for unknown landmark")
			continue
		}
		e.available = clamp(available, 0, e.capacity)
		metrics.SetLiveAvailable(name, e.available)
		restored++
	}

	s.logger.Info().Int("restored", restored).Int("landmarks", len(s.order)).Msg("live counters restored from journal")
	return restored, nil
}

// Apply records a park or leave event for one landmark and returns its new
// status. Unknown landmarks fail with *models.NotFoundError and journal
// failures with *models.PersistError; in both cases no counter changes.
func (s *LiveStore) Apply(ctx context.Context, name string, action models.Action) (models.LiveStatus, error) {
	s.barrier.RLock()
	defer s.barrier.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		metrics.RecordLiveEvent(string(action), "not_found")
		return models.LiveStatus{}, &models.NotFoundError{Name: name}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	next := e.available
	switch action {
	case models.ActionPark:
		if next > 0 {
			next--
		}
	case models.ActionLeave:
		if next < e.capacity {
			next++
		}
	default:
		return models.LiveStatus{}, &models.ValidationError{Field: "action", Reason: "must be one of: park leave"}
	}

	status := models.LiveStatus{
		Name:          e.name,
		Available:     next,
		TotalCapacity: e.capacity,
		UpdatedAt:     s.now(),
	}

	if s.journal != nil && next != e.available {
		if err := s.journal.Record(ctx, status); err != nil {
			metrics.RecordLiveEvent(string(action), "persist_error")
			return models.LiveStatus{}, asPersistError("record live status", err)
		}
	}

	e.available = next
	e.updatedAt = status.UpdatedAt
	metrics.RecordLiveEvent(string(action), "ok")
	metrics.SetLiveAvailable(e.name, next)

	return status, nil
}

// Get returns the current status of one landmark.
func (s *LiveStore) Get(name string) (models.LiveStatus, bool) {
	s.barrier.RLock()
	defer s.barrier.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		return models.LiveStatus{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status(), true
}

// Snapshot returns every landmark's status in catalog order. Writers are
// held off for the duration, so no value is observed mid-update.
func (s *LiveStore) Snapshot() []models.LiveStatus {
	s.barrier.Lock()
	defer s.barrier.Unlock()

	out := make([]models.LiveStatus, len(s.order))
	for i, e := range s.order {
		out[i] = e.status()
	}
	return out
}

// status must be called with e.mu held or the barrier held exclusively.
func (e *liveEntry) status() models.LiveStatus {
	return models.LiveStatus{
		Name:          e.name,
		Available:     e.available,
		TotalCapacity: e.capacity,
		UpdatedAt:     e.updatedAt,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func asPersistError(op string, err error) error {
	if errors.Is(err, models.ErrPersist) {
		return err
	}
	return &models.PersistError{Op: op, Err: err}
}
