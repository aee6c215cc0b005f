// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package retrain

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/parkcast/internal/corpus"
	"github.com/tomtom215/parkcast/internal/logging"
	"github.com/tomtom215/parkcast/internal/metrics"
	"github.com/tomtom215/parkcast/internal/models"
	"github.com/tomtom215/parkcast/internal/parking"
	"github.com/tomtom215/parkcast/internal/predict"
	"github.com/tomtom215/parkcast/internal/predict/storage"
)

// LiveSource provides the consistent snapshot a run learns from.
type LiveSource interface {
	Snapshot() []models.LiveStatus
}

// ModelStore persists fitted models. *storage.Store implements it.
type ModelStore interface {
	Save(ctx context.Context, name string, m *predict.Model, meta storage.ModelMetadata) error
	LoadLatest(ctx context.Context, name string) (*predict.Model, *storage.ModelMetadata, error)
	LatestVersion(name string) (int, bool)
	Prune(ctx context.Context, name string, keepVersions int) (int, error)
}

// Config controls the pipeline.
type Config struct {
	// ModelName names persisted artifacts.
	ModelName string

	// KeepVersions is how many artifacts Prune keeps after a save.
	KeepVersions int

	// Forest configures fitting.
	Forest predict.ForestConfig

	// Timeout bounds a single run.
	Timeout time.Duration

	// Persist saves each published model. Ignored without a ModelStore.
	Persist bool

	// Synthetic lets Bootstrap generate SyntheticRows rows when the corpus
	// is empty.
	Synthetic     bool
	SyntheticRows int

	// Location is the time zone used for the hour and weekday features.
	Location *time.Location

	// Now overrides the clock (tests).
	Now func() time.Time
}

// DefaultConfig returns the production pipeline settings.
func DefaultConfig() Config {
	return Config{
		ModelName:     "parking",
		KeepVersions:  5,
		Forest:        predict.DefaultForestConfig(),
		Timeout:       5 * time.Minute,
		Persist:       true,
		Synthetic:     true,
		SyntheticRows: 5000,
		Location:      time.Local,
	}
}

// Result describes one completed run.
type Result struct {
	RunID       string        `json:"run_id"`
	Version     int           `json:"version"`
	Appended    int           `json:"appended"`
	CorpusRows  int           `json:"corpus_rows"`
	Duration    time.Duration `json:"duration"`
	CompletedAt time.Time     `json:"completed_at"`
	Persisted   bool          `json:"persisted"`
}

// Status is a point-in-time view of the pipeline.
type Status struct {
	Running    bool      `json:"running"`
	Runs       int64     `json:"runs"`
	Failures   int64     `json:"failures"`
	LastResult *Result   `json:"last_result,omitempty"`
	LastError  string    `json:"last_error,omitempty"`
	LastRunAt  time.Time `json:"last_run_at,omitempty"`
}

// Pipeline turns the live snapshot into a new serving model.
//
// A run takes the snapshot, stamps each row with the current hour and
// weekday, appends the rows to the corpus, refits on the whole corpus and
// publishes the new model atomically. Any failure before publishing leaves
// the previous model serving. The append is not undone when the fit fails:
// the snapshot rows stay in the corpus and the next run trains on them.
// Persisting the artifact comes last and its failure does not undo the
// publish.
type Pipeline struct {
	cfg       Config
	catalog   *parking.Catalog
	live      LiveSource
	corpus    corpus.Store
	handle    *predict.Handle
	artifacts ModelStore
	logger    zerolog.Logger

	// single-flight guard
	runMu sync.Mutex

	version  atomic.Int64
	running  atomic.Bool
	runs     atomic.Int64
	failures atomic.Int64

	statusMu   sync.RWMutex
	lastResult *Result
	lastError  string
	lastRunAt  time.Time
}

// New creates a pipeline. artifacts may be nil to keep models in memory only.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func New(cfg Config, catalog *parking.Catalog, live LiveSource, store corpus.Store, handle *predict.Handle, artifacts ModelStore, logger zerolog.Logger) *Pipeline {
	if cfg.ModelName == "" {
		cfg.ModelName = "parking"
	}
	if cfg.KeepVersions < 1 {
		cfg.KeepVersions = 5
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.SyntheticRows <= 0 {
		cfg.SyntheticRows = 5000
	}

	p := &Pipeline{
		cfg:       cfg,
		catalog:   catalog,
		live:      live,
		corpus:    store,
		handle:    handle,
		artifacts: artifacts,
		logger:    logger.With().Str("component", "retrain").Logger(),
	}
	if artifacts != nil {
		if v, ok := artifacts.LatestVersion(cfg.ModelName); ok {
			p.version.Store(int64(v))
		}
	}
	return p
}

// Run executes one retrain. It returns models.ErrRetrainInProgress without
// waiting when another run holds the pipeline.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	if !p.runMu.TryLock() {
		metrics.RecordRetrain(0, 0, nil, true)
		return nil, models.ErrRetrainInProgress
	}
	defer p.runMu.Unlock()

	p.running.Store(true)
	defer p.running.Store(false)

	runID := logging.GenerateRunID()
	ctx = logging.ContextWithRunID(ctx, runID)
	log := logging.FromContext(ctx, p.logger)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	start := time.Now()
	log.Info().Msg("starting retrain")

	res, err := p.run(ctx, runID, log)
	duration := time.Since(start)

	appended := 0
	if res != nil {
		res.Duration = duration
		appended = res.Appended
	}
	metrics.RecordRetrain(duration, appended, err, false)
	p.finish(res, err)

	if err != nil {
		log.Error().Err(err).Dur("duration", duration).Msg("retrain failed, previous model still serving")
		return nil, err
	}

	log.Info().
		Int("version", res.Version).
		Int("appended", res.Appended).
		Int("corpus_rows", res.CorpusRows).
		Int64("duration_ms", duration.Milliseconds()).
		Bool("persisted", res.Persisted).
		Msg("retrain complete")
	return res, nil
}

//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func (p *Pipeline) run(ctx context.Context, runID string, log zerolog.Logger) (*Result, error) {
	snapshot := p.live.Snapshot()

	now := p.cfg.Now().In(p.cfg.Location)
	rows := p.observations(snapshot, now)

	full, err := p.corpus.Append(ctx, rows)
	if err != nil {
		return nil, fmt.Errorf("append live snapshot: %w", err)
	}
	log.Debug().Int("appended", len(rows)).Int("corpus_rows", len(full)).Msg("corpus updated")

	m, persisted, err := p.fitAndPublish(ctx, full, log)
	if err != nil {
		return nil, err
	}

	return &Result{
		RunID:       runID,
		Version:     m.Version,
		Appended:    len(rows),
		CorpusRows:  len(full),
		CompletedAt: p.cfg.Now().In(p.cfg.Location),
		Persisted:   persisted,
	}, nil
}

// observations stamps each snapshot row with the hour and weekday of now.
func (p *Pipeline) observations(snapshot []models.LiveStatus, now time.Time) []models.Observation {
	hour, day := now.Hour(), models.Weekday(now)
	rows := make([]models.Observation, 0, len(snapshot))
	for _, st := range snapshot {
		lm, ok := p.catalog.Get(st.Name)
		if !ok {
			continue
		}
		rows = append(rows, models.Observation{
			Name:           lm.Name,
			Lat:            lm.Lat,
			Lng:            lm.Lng,
			Hour:           hour,
			Day:            day,
			AvailableSpots: st.Available,
			TotalCapacity:  lm.TotalCapacity,
		})
	}
	return rows
}

// fitAndPublish fits on rows, publishes the model and persists it when
// configured. It reports whether the artifact was saved.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func (p *Pipeline) fitAndPublish(ctx context.Context, rows []models.Observation, log zerolog.Logger) (*predict.Model, bool, error) {
	fitStart := time.Now()
	forest, err := predict.FitObservations(ctx, rows, p.cfg.Forest)
	if err != nil {
		return nil, false, fmt.Errorf("fit model: %w", err)
	}
	fitDuration := time.Since(fitStart)

	m := &predict.Model{
		Forest:    forest,
		Version:   int(p.version.Add(1)),
		TrainedAt: p.cfg.Now(),
		Rows:      len(rows),
	}
	p.handle.Publish(m)
	metrics.SetModelVersion(m.Version)
	metrics.SetCorpusRows(len(rows))

	log.Info().
		Int("version", m.Version).
		Int("rows", len(rows)).
		Int("nodes", forest.Size()).
		Int("max_depth", forest.MaxDepth()).
		Int64("fit_ms", fitDuration.Milliseconds()).
		Msg("model published")

	if p.artifacts == nil || !p.cfg.Persist {
		return m, false, nil
	}

	meta := storage.ModelMetadata{TrainingDurationMS: fitDuration.Milliseconds()}
	if err := p.artifacts.Save(ctx, p.cfg.ModelName, m, meta); err != nil {
		metrics.RecordModelPersistError()
		log.Warn().Err(err).Int("version", m.Version).Msg("failed to persist model, keeping it in memory")
		return m, false, nil
	}
	if removed, err := p.artifacts.Prune(ctx, p.cfg.ModelName, p.cfg.KeepVersions); err != nil {
		log.Warn().Err(err).Msg("failed to prune old models")
	} else if removed > 0 {
		log.Debug().Int("removed", removed).Msg("pruned old models")
	}
	return m, true, nil
}

// Bootstrap installs a model at startup. It loads the newest persisted
// artifact; without one it fits on the existing corpus (no append), first
// generating a synthetic corpus when the corpus is empty and Synthetic is
// enabled. A corrupt artifact is logged and replaced by a fresh fit.
func (p *Pipeline) Bootstrap(ctx context.Context) (*predict.Model, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	ctx = logging.ContextWithRunID(ctx, logging.GenerateRunID())
	log := logging.FromContext(ctx, p.logger)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
	defer cancel()

	if p.artifacts != nil {
		m, meta, err := p.artifacts.LoadLatest(ctx, p.cfg.ModelName)
		switch {
		case err == nil:
			p.handle.Publish(m)
			if int64(m.Version) > p.version.Load() {
				p.version.Store(int64(m.Version))
			}
			metrics.SetModelVersion(m.Version)
			metrics.SetCorpusRows(m.Rows)
			log.Info().
				Int("version", m.Version).
				Time("trained_at", meta.TrainedAt).
				Int("rows", m.Rows).
				Msg("loaded persisted model")
			return m, nil
		case errors.Is(err, models.ErrModelUnavailable):
			log.Info().Msg("no persisted model, fitting from corpus")
		default:
			log.Warn().Err(err).Msg("persisted model unreadable, fitting from corpus")
		}
	}

	rows, err := p.corpus.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	if len(rows) == 0 {
		if !p.cfg.Synthetic {
			return nil, models.ErrEmptyCorpus
		}
		seed := p.cfg.Forest.Seed
		synthetic := corpus.Generate(p.catalog.All(), p.cfg.SyntheticRows, seed, p.cfg.Now().In(p.cfg.Location))
		if rows, err = p.corpus.Append(ctx, synthetic); err != nil {
			return nil, fmt.Errorf("seed synthetic corpus: %w", err)
		}
		log.Info().Int("rows", len(rows)).Msg("seeded synthetic corpus")
	}

	m, _, err := p.fitAndPublish(ctx, rows, log)
	if err != nil {
		return nil, err
	}
	p.finish(&Result{
		Version:     m.Version,
		CorpusRows:  len(rows),
		CompletedAt: p.cfg.Now().In(p.cfg.Location),
	}, nil)
	return m, nil
}

func (p *Pipeline) finish(res *Result, err error) {
	p.runs.Add(1)
	p.statusMu.Lock()
	defer p.statusMu.Unlock()

	p.lastRunAt = p.cfg.Now()
	if err != nil {
		p.failures.Add(1)
		p.lastError = err.Error()
		return
	}
	p.lastError = ""
	p.lastResult = res
}

// Status returns the current pipeline status.
func (p *Pipeline) Status() Status {
	p.statusMu.RLock()
	defer p.statusMu.RUnlock()

	st := Status{
		Running:   p.running.Load(),
		Runs:      p.runs.Load(),
		Failures:  p.failures.Load(),
		LastError: p.lastError,
		LastRunAt: p.lastRunAt,
	}
	if p.lastResult != nil {
		r := *p.lastResult
		st.LastResult = &r
	}
	return st
}

// CorpusRows returns the corpus size.
func (p *Pipeline) CorpusRows(ctx context.Context) (int, error) {
	return p.corpus.Len(ctx)
}
