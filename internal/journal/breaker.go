// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package journal

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/parkcast/internal/metrics"
	"github.com/tomtom215/parkcast/internal/models"
)

// Journal is the contract the live store writes through.
type Journal interface {
	Record(ctx context.Context, status models.LiveStatus) error
	Restore(ctx context.Context) (map[string]int, error)
}

// BreakerConfig tunes the circuit breaker around journal writes.
type BreakerConfig struct {
	// MaxRequests is the number of trial writes allowed while half-open.
	MaxRequests uint32

	// Interval resets failure counts while closed. Zero never resets.
	Interval time.Duration

	// Timeout is how long the breaker stays open before trying again.
	Timeout time.Duration

	// ConsecutiveFailures trips the breaker.
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig returns the production settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:         1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// Breaker guards journal writes with a circuit breaker. While open, writes
// fail fast instead of waiting on a struggling disk, and the live store
// rejects events rather than drift from what is durable. Restore is
// passed through unguarded.
type Breaker struct {
	inner  Journal
	cb     *gobreaker.CircuitBreaker[struct{}]
	logger zerolog.Logger
}

// NewBreaker wraps inner.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func NewBreaker(inner Journal, cfg BreakerConfig, logger zerolog.Logger) *Breaker {
	if cfg.ConsecutiveFailures == 0 {
		cfg.ConsecutiveFailures = DefaultBreakerConfig().ConsecutiveFailures
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = 1
	}

	b := &Breaker{
		inner:  inner,
		logger: logger.With().Str("component", "journal-breaker").Logger(),
	}
	metrics.SetJournalBreakerState(gobreaker.StateClosed.String())

	trip := cfg.ConsecutiveFailures
	b.cb = gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "live-journal",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= trip
		},
		// Cancelled writes say nothing about journal health.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			b.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Journal circuit breaker state change")
			metrics.SetJournalBreakerState(to.String())
		},
	})
	return b
}

// Record writes through the breaker.
func (b *Breaker) Record(ctx context.Context, status models.LiveStatus) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, b.inner.Record(ctx, status)
	})
	metrics.RecordJournalWrite(err)
	return err
}

// Restore reads the inner journal directly.
func (b *Breaker) Restore(ctx context.Context) (map[string]int, error) {
	return b.inner.Restore(ctx)
}

// State returns the breaker state name.
func (b *Breaker) State() string {
	return b.cb.State().String()
}
