// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package journal

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/parkcast/internal/metrics"
	"github.com/tomtom215/parkcast/internal/models"
)

// flakyJournal fails Record while failing is set.
type flakyJournal struct {
	mu      sync.Mutex
	failing bool
	calls   int
	saved   map[string]int
}

func (f *flakyJournal) Record(_ context.Context, st models.LiveStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failing {
		return errors.New("disk full")
	}
	if f.saved == nil {
		f.saved = make(map[string]int)
	}
	f.saved[st.Name] = st.Available
	return nil
}

func (f *flakyJournal) Restore(context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int, len(f.saved))
	for k, v := range f.saved {
		out[k] = v
	}
	return out, nil
}

func (f *flakyJournal) setFailing(v bool) {
	f.mu.Lock()
	f.failing = v
	f.mu.Unlock()
}

func (f *flakyJournal) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestBreaker_PassesThrough(t *testing.T) {
	inner := &flakyJournal{}
	b := NewBreaker(inner, DefaultBreakerConfig(), zerolog.Nop())

	if err := b.Record(context.Background(), status("Main Gate", 3)); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	got, err := b.Restore(context.Background())
	if err != nil || got["Main Gate"] != 3 {
		t.Errorf("Restore() = %v, %v", got, err)
	}
	if b.State() != "closed" {
		t.Errorf("State() = %q, want closed", b.State())
	}
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	inner := &flakyJournal{failing: true}
	b := NewBreaker(inner, BreakerConfig{
		ConsecutiveFailures: 3,
		Timeout:             50 * time.Millisecond,
	}, zerolog.Nop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := b.Record(ctx, status("A", i)); err == nil {
			t.Fatalf("Record(%d) should fail", i)
		}
	}
	if b.State() != "open" {
		t.Fatalf("State() = %q, want open", b.State())
	}
	if got := testutil.ToFloat64(metrics.JournalBreakerState); got != 2 {
		t.Errorf("breaker state gauge = %v, want 2", got)
	}

	// Open: rejected without reaching the disk.
	before := inner.callCount()
	err := b.Record(ctx, status("A", 9))
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Record() while open = %v, want ErrOpenState", err)
	}
	if inner.callCount() != before {
		t.Error("open breaker still called the journal")
	}

	// After the timeout a successful trial write closes it again.
	inner.setFailing(false)
	time.Sleep(80 * time.Millisecond)
	if err := b.Record(ctx, status("A", 5)); err != nil {
		t.Fatalf("trial Record() error = %v", err)
	}
	if b.State() != "closed" {
		t.Errorf("State() after recovery = %q, want closed", b.State())
	}
}

func TestBreaker_CancellationDoesNotTrip(t *testing.T) {
	inner := &cancelJournal{}
	b := NewBreaker(inner, BreakerConfig{ConsecutiveFailures: 2}, zerolog.Nop())

	for i := 0; i < 5; i++ {
		if err := b.Record(context.Background(), status("A", i)); !errors.Is(err, context.Canceled) {
			t.Fatalf("Record() error = %v, want context.Canceled", err)
		}
	}
	if b.State() != "closed" {
		t.Errorf("State() = %q, want closed", b.State())
	}
}

type cancelJournal struct{}

func (cancelJournal) Record(context.Context, models.LiveStatus) error { return context.Canceled }

func (cancelJournal) Restore(context.Context) (map[string]int, error) { return nil, nil }
