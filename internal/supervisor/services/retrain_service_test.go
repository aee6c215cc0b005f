// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/parkcast/internal/retrain"
)

// mockRetrainer numbers its runs. The first run blocks on gate when set.
type mockRetrainer struct {
	mu      sync.Mutex
	calls   int
	err     error
	gate    chan struct{}
	started chan struct{}
}

func newMockRetrainer() *mockRetrainer {
	return &mockRetrainer{started: make(chan struct{}, 16)}
}

func (m *mockRetrainer) Run(ctx context.Context) (*retrain.Result, error) {
	m.mu.Lock()
	m.calls++
	n := m.calls
	gate := m.gate
	err := m.err
	m.mu.Unlock()

	m.started <- struct{}{}
	if n == 1 && gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if cerr := ctx.Err(); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		return nil, err
	}
	return &retrain.Result{Version: n}, nil
}

func (m *mockRetrainer) getCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func serveInBackground(t *testing.T, svc *RetrainService) (cancel func(), done <-chan error) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	ch := make(chan error, 1)
	go func() { ch <- svc.Serve(ctx) }()
	t.Cleanup(cancelFn)
	return cancelFn, ch
}

func receive(t *testing.T, ch <-chan Outcome) Outcome {
	t.Helper()
	select {
	case o := <-ch:
		return o
	case <-time.After(2 * time.Second):
		t.Fatal("no outcome delivered")
		return Outcome{}
	}
}

func TestRetrainService_Interface(t *testing.T) {
	var _ suture.Service = (*RetrainService)(nil)
	svc := NewRetrainService(newMockRetrainer(), RetrainServiceConfig{}, zerolog.Nop())
	if got := svc.String(); got != "retrain-service" {
		t.Errorf("String() = %q, want retrain-service", got)
	}
}

func TestRetrainService_ManualTrigger(t *testing.T) {
	r := newMockRetrainer()
	svc := NewRetrainService(r, RetrainServiceConfig{}, zerolog.Nop())
	serveInBackground(t, svc)

	ch, err := svc.Trigger()
	if err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	o := receive(t, ch)
	if o.Err != nil || o.Result == nil || o.Result.Version != 1 {
		t.Errorf("outcome = %+v", o)
	}
}

func TestRetrainService_CoalescesTriggersDuringRun(t *testing.T) {
	r := newMockRetrainer()
	r.gate = make(chan struct{})
	svc := NewRetrainService(r, RetrainServiceConfig{}, zerolog.Nop())
	serveInBackground(t, svc)

	first, err := svc.Trigger()
	if err != nil {
		t.Fatalf("Trigger() error = %v", err)
	}
	<-r.started

	// Both arrive while run 1 is in progress and share run 2.
	second, _ := svc.Trigger()
	third, _ := svc.Trigger()
	close(r.gate)

	if o := receive(t, first); o.Result == nil || o.Result.Version != 1 {
		t.Errorf("first outcome = %+v, want version 1", o)
	}
	o2 := receive(t, second)
	o3 := receive(t, third)
	if o2.Result == nil || o3.Result == nil || o2.Result != o3.Result || o2.Result.Version != 2 {
		t.Errorf("coalesced outcomes = %+v / %+v, want shared version 2", o2, o3)
	}
	if got := r.getCalls(); got != 2 {
		t.Errorf("Run() called %d times, want 2", got)
	}
}

func TestRetrainService_Throttle(t *testing.T) {
	r := newMockRetrainer()
	svc := NewRetrainService(r, RetrainServiceConfig{MinGap: time.Hour}, zerolog.Nop())
	serveInBackground(t, svc)

	ch, err := svc.Trigger()
	if err != nil {
		t.Fatalf("first Trigger() error = %v", err)
	}
	receive(t, ch)

	if _, err := svc.Trigger(); !errors.Is(err, ErrTriggerThrottled) {
		t.Errorf("second Trigger() error = %v, want ErrTriggerThrottled", err)
	}
}

func TestRetrainService_JoiningPendingIsNotThrottled(t *testing.T) {
	r := newMockRetrainer()
	svc := NewRetrainService(r, RetrainServiceConfig{MinGap: time.Hour}, zerolog.Nop())

	// Not serving yet: both triggers stay pending.
	if _, err := svc.Trigger(); err != nil {
		t.Fatalf("first Trigger() error = %v", err)
	}
	ch, err := svc.Trigger()
	if err != nil {
		t.Fatalf("joining Trigger() error = %v", err)
	}

	serveInBackground(t, svc)
	if o := receive(t, ch); o.Err != nil {
		t.Errorf("outcome error = %v", o.Err)
	}
	if got := r.getCalls(); got != 1 {
		t.Errorf("Run() called %d times, want 1", got)
	}
}

func TestRetrainService_PropagatesFailure(t *testing.T) {
	r := newMockRetrainer()
	r.err = errors.New("corpus unavailable")
	svc := NewRetrainService(r, RetrainServiceConfig{}, zerolog.Nop())
	serveInBackground(t, svc)

	ch, _ := svc.Trigger()
	o := receive(t, ch)
	if o.Err == nil || o.Result != nil {
		t.Errorf("outcome = %+v, want error", o)
	}
}

func TestRetrainService_OnStartupAndSchedule(t *testing.T) {
	r := newMockRetrainer()
	svc := NewRetrainService(r, RetrainServiceConfig{
		OnStartup: true,
		Interval:  30 * time.Millisecond,
	}, zerolog.Nop())
	serveInBackground(t, svc)

	// startup plus at least two ticks
	for i := 0; i < 3; i++ {
		select {
		case <-r.started:
		case <-time.After(2 * time.Second):
			t.Fatalf("only %d runs started", i)
		}
	}
}

func TestRetrainService_NoSchedule(t *testing.T) {
	r := newMockRetrainer()
	svc := NewRetrainService(r, RetrainServiceConfig{}, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
	defer cancel()
	_ = svc.Serve(ctx)

	if got := r.getCalls(); got != 0 {
		t.Errorf("Run() called %d times, want 0", got)
	}
}

func TestRetrainService_ShutdownFailsPendingTriggers(t *testing.T) {
	r := newMockRetrainer()
	r.gate = make(chan struct{})
	svc := NewRetrainService(r, RetrainServiceConfig{}, zerolog.Nop())
	cancel, done := serveInBackground(t, svc)

	first, _ := svc.Trigger()
	<-r.started
	second, _ := svc.Trigger()
	cancel()

	if o := receive(t, first); !errors.Is(o.Err, context.Canceled) {
		t.Errorf("in-flight outcome = %+v, want context.Canceled", o)
	}
	if o := receive(t, second); !errors.Is(o.Err, context.Canceled) {
		t.Errorf("pending outcome = %+v, want context.Canceled", o)
	}

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve() did not return")
	}
}
