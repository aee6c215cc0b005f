// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"
)

// GarbageCollector reclaims journal space. Satisfied by *journal.BadgerJournal.
type GarbageCollector interface {
	RunGC() error
}

// JournalGCService runs value log garbage collection on the live journal.
type JournalGCService struct {
	gc       GarbageCollector
	interval time.Duration
	closed   error
	logger   zerolog.Logger
	name     string
}

// NewJournalGCService creates a GC service. closedErr is the sentinel the
// collector returns once the journal is closed; the service then exits
// with suture.ErrDoNotRestart. A non-positive interval selects 10m.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func NewJournalGCService(gc GarbageCollector, interval time.Duration, closedErr error, logger zerolog.Logger) *JournalGCService {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &JournalGCService{
		gc:       gc,
		interval: interval,
		closed:   closedErr,
		logger:   logger.With().Str("service", "journal-gc").Logger(),
		name:     "journal-gc",
	}
}

// Serve implements the suture.Service interface.
func (s *JournalGCService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			start := time.Now()
			err := s.gc.RunGC()
			switch {
			case err == nil:
				s.logger.Debug().Dur("duration", time.Since(start)).Msg("journal gc complete")
			case s.closed != nil && errors.Is(err, s.closed):
				s.logger.Info().Msg("journal closed, stopping gc")
				return suture.ErrDoNotRestart
			default:
				s.logger.Warn().Err(err).Msg("journal gc failed")
			}
		}
	}
}

// String returns the service name for logging.
func (s *JournalGCService) String() string {
	return s.name
}
