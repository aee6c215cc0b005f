// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package api

import (
	"context"
	"time"

	"github.com/tomtom215/parkcast/internal/models"
	"github.com/tomtom215/parkcast/internal/parking"
	"github.com/tomtom215/parkcast/internal/retrain"
	"github.com/tomtom215/parkcast/internal/supervisor/services"
)

// SpotRanker answers rank queries. Satisfied by *parking.Ranker.
type SpotRanker interface {
	Rank(ctx context.Context, q parking.Query) ([]models.Spot, error)
	Overview() []parking.LandmarkStatus
}

// ActivityRecorder applies park and leave events. Satisfied by *parking.LiveStore.
type ActivityRecorder interface {
	Apply(ctx context.Context, name string, action models.Action) (models.LiveStatus, error)
}

// RetrainTrigger queues a retrain. Satisfied by *services.RetrainService.
type RetrainTrigger interface {
	Trigger() (<-chan services.Outcome, error)
}

// PipelineInspector reports retrain state. Satisfied by *retrain.Pipeline.
type PipelineInspector interface {
	Status() retrain.Status
	CorpusRows(ctx context.Context) (int, error)
}

// ModelInspector reports the serving model. Satisfied by *predict.Handle.
type ModelInspector interface {
	Loaded() bool
	Version() int
}

// BreakerInspector reports the journal circuit breaker state. Satisfied by
// *journal.Breaker.
type BreakerInspector interface {
	State() string
}

// HandlerConfig holds request-scoped limits and presentation settings.
type HandlerConfig struct {
	// QueryTimeout bounds a single rank query. Zero disables the bound.
	QueryTimeout time.Duration

	// LearnTimeout bounds how long a synchronous /learn waits for the run.
	LearnTimeout time.Duration

	// Location renders retrain timestamps. Default: time.Local
	Location *time.Location

	// MaxBodyBytes caps request bodies. Default: 1 MiB
	MaxBodyBytes int64
}

// Handler contains dependencies for API handlers
//
// Handler methods are split across files:
//   - handlers.go: Handler struct and constructor (this file)
//   - handlers_parking.go: predict, update_activity and landmarks
//   - handlers_learn.go: retrain trigger
//   - handlers_health.go: root status and health
type Handler struct {
	ranker    SpotRanker
	live      ActivityRecorder
	trigger   RetrainTrigger
	pipeline  PipelineInspector
	model     ModelInspector
	breaker   BreakerInspector
	config    HandlerConfig
	startTime time.Time
}

// NewHandler creates a new API handler. breaker may be nil when the live
// journal is disabled.
func NewHandler(ranker SpotRanker, live ActivityRecorder, trigger RetrainTrigger, pipeline PipelineInspector, model ModelInspector, breaker BreakerInspector, cfg HandlerConfig) *Handler {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	return &Handler{
		ranker:    ranker,
		live:      live,
		trigger:   trigger,
		pipeline:  pipeline,
		model:     model,
		breaker:   breaker,
		config:    cfg,
		startTime: time.Now(),
	}
}
