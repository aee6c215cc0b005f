// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/tomtom215/parkcast/internal/retrain"
)

// ErrTriggerThrottled is returned by Trigger when manual triggers arrive
// faster than the configured minimum gap.
var ErrTriggerThrottled = errors.New("retrain trigger throttled")

// Retrainer runs one retrain. Satisfied by *retrain.Pipeline.
type Retrainer interface {
	Run(ctx context.Context) (*retrain.Result, error)
}

// Outcome is delivered to every caller whose trigger a run served.
type Outcome struct {
	Result *retrain.Result
	Err    error
}

// RetrainServiceConfig holds configuration for the retrain service.
type RetrainServiceConfig struct {
	// Interval is the periodic retrain cadence. Zero disables the schedule;
	// manual triggers still work.
	Interval time.Duration

	// OnStartup runs one retrain as soon as the service starts.
	OnStartup bool

	// MinGap is the minimum spacing between manual triggers that start a
	// new run. Triggers that join a pending run are never throttled.
	MinGap time.Duration
}

// RetrainService owns the retrain loop: it runs the pipeline on a schedule
// and on demand. Manual triggers that arrive while a run is pending or in
// progress are coalesced into the next run and all receive its outcome.
type RetrainService struct {
	retrainer Retrainer
	config    RetrainServiceConfig
	limiter   *rate.Limiter
	logger    zerolog.Logger
	name      string

	wake chan struct{}

	mu      sync.Mutex
	pending []chan Outcome
}

// NewRetrainService creates a new retrain service.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func NewRetrainService(retrainer Retrainer, cfg RetrainServiceConfig, logger zerolog.Logger) *RetrainService {
	return &RetrainService{
		retrainer: retrainer,
		config:    cfg,
		limiter:   rate.NewLimiter(rate.Every(cfg.MinGap), 1),
		logger:    logger.With().Str("service", "retrain").Logger(),
		name:      "retrain-service",
		wake:      make(chan struct{}, 1),
	}
}

// Trigger requests a retrain and returns a channel that receives the
// outcome of the run that serves it. The channel is buffered so callers may
// abandon it.
func (s *RetrainService) Trigger() (<-chan Outcome, error) {
	ch := make(chan Outcome, 1)

	s.mu.Lock()
	if len(s.pending) == 0 && !s.limiter.Allow() {
		s.mu.Unlock()
		return nil, ErrTriggerThrottled
	}
	s.pending = append(s.pending, ch)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return ch, nil
}

// Serve implements the suture.Service interface.
func (s *RetrainService) Serve(ctx context.Context) error {
	s.logger.Info().
		Bool("on_startup", s.config.OnStartup).
		Dur("interval", s.config.Interval).
		Msg("retrain service starting")

	if s.config.OnStartup {
		s.logger.Info().Msg("retraining on startup")
		s.runOnce(ctx, "startup")
	}

	var tick <-chan time.Time
	if s.config.Interval > 0 {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.drain(ctx.Err())
			s.logger.Info().Msg("retrain service shutting down")
			return ctx.Err()

		case <-tick:
			s.logger.Debug().Msg("scheduled retrain triggered")
			s.runOnce(ctx, "schedule")

		case <-s.wake:
			s.runOnce(ctx, "manual")
		}
	}
}

// runOnce serves every trigger queued before the run starts. Triggers that
// arrive during the run wait for the next one.
func (s *RetrainService) runOnce(ctx context.Context, reason string) {
	s.mu.Lock()
	waiters := s.pending
	s.pending = nil
	s.mu.Unlock()

	res, err := s.retrainer.Run(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Str("reason", reason).Int("waiters", len(waiters)).Msg("retrain failed")
	} else {
		s.logger.Debug().Str("reason", reason).Int("waiters", len(waiters)).Int("version", res.Version).Msg("retrain finished")
	}

	for _, ch := range waiters {
		ch <- Outcome{Result: res, Err: err}
	}
}

// drain fails pending triggers on shutdown.
func (s *RetrainService) drain(err error) {
	s.mu.Lock()
	waiters := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, ch := range waiters {
		ch <- Outcome{Err: err}
	}
}

// String returns the service name for logging.
func (s *RetrainService) String() string {
	return s.name
}
