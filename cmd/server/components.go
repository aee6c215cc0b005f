// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/parkcast/internal/config"
	"github.com/tomtom215/parkcast/internal/corpus"
	"github.com/tomtom215/parkcast/internal/journal"
	"github.com/tomtom215/parkcast/internal/logging"
	"github.com/tomtom215/parkcast/internal/models"
	"github.com/tomtom215/parkcast/internal/parking"
	"github.com/tomtom215/parkcast/internal/predict"
	"github.com/tomtom215/parkcast/internal/predict/storage"
	"github.com/tomtom215/parkcast/internal/retrain"
)

// JournalComponents holds the live journal and the breaker guarding it.
type JournalComponents struct {
	badger  *journal.BadgerJournal
	breaker *journal.Breaker
}

// Close closes the underlying BadgerDB.
func (j *JournalComponents) Close() error {
	if j == nil {
		return nil
	}
	return j.badger.Close()
}

// LearningComponents holds the prediction and retrain stack.
type LearningComponents struct {
	Store    corpus.Store
	Handle   *predict.Handle
	Pipeline *retrain.Pipeline
}

// initCatalog loads the landmark catalog from CATALOG_PATH, or the built-in
// landmarks when no path is configured.
func initCatalog(cfg *config.Config) (*parking.Catalog, error) {
	if cfg.Catalog.Path == "" {
		logging.Info().Msg("No catalog file configured (CATALOG_PATH), using built-in landmarks")
		return parking.NewCatalog(parking.DefaultLandmarks())
	}

	catalog, err := parking.LoadCatalogCSV(cfg.Catalog.Path)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", cfg.Catalog.Path, err)
	}
	logging.Info().Str("path", cfg.Catalog.Path).Int("landmarks", catalog.Len()).Msg("Catalog loaded")
	return catalog, nil
}

// initJournal opens the live journal. Returns nil, nil when the journal is
// disabled and live counters are kept in memory only.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initJournal(cfg *config.Config, logger zerolog.Logger) (*JournalComponents, error) {
	if !cfg.Journal.Enabled {
		logging.Warn().Msg("Live journal disabled (JOURNAL_ENABLED=false). Live counters reset on restart.")
		return nil, nil
	}

	jcfg := journal.DefaultConfig(cfg.Journal.Path)
	jcfg.SyncWrites = cfg.Journal.SyncWrites

	logging.Info().Str("path", jcfg.Path).Bool("sync_writes", jcfg.SyncWrites).Msg("Opening live journal...")
	bj, err := journal.Open(jcfg, logger)
	if err != nil {
		return nil, err
	}

	bcfg := journal.DefaultBreakerConfig()
	if cfg.Journal.BreakerFailures > 0 {
		bcfg.ConsecutiveFailures = uint32(cfg.Journal.BreakerFailures) //nolint:gosec // validated positive
	}
	if cfg.Journal.BreakerTimeout > 0 {
		bcfg.Timeout = cfg.Journal.BreakerTimeout
	}

	return &JournalComponents{
		badger:  bj,
		breaker: journal.NewBreaker(bj, bcfg, logger),
	}, nil
}

// initLiveStore seeds live counters and restores journaled values.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initLiveStore(ctx context.Context, cfg *config.Config, catalog *parking.Catalog, jc *JournalComponents, logger zerolog.Logger) *parking.LiveStore {
	lcfg := parking.LiveStoreConfig{SeedRatio: cfg.Catalog.SeedRatio}
	if jc != nil {
		lcfg.Journal = jc.breaker
	}
	live := parking.NewLiveStore(catalog, lcfg, logger)

	if jc != nil {
		if _, err := live.Restore(ctx); err != nil {
			// Seeded counters are still usable.
			logging.Warn().Err(err).Msg("Failed to restore live counters from journal")
		}
	}
	return live
}

// initLearning opens the corpus, the model artifact store and the retrain
// pipeline, then installs the first model. A bootstrap failure is not fatal:
// the service ranks with ml_count 0 until a retrain succeeds.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func initLearning(ctx context.Context, cfg *config.Config, catalog *parking.Catalog, live *parking.LiveStore, loc *time.Location, logger zerolog.Logger) (*LearningComponents, error) {
	store, err := corpus.Open(ctx, corpus.Config{
		Backend:         cfg.Corpus.Backend,
		CSVPath:         cfg.Corpus.Path,
		DuckDBPath:      cfg.Corpus.DuckDBPath,
		MaxRows:         cfg.Corpus.MaxRows,
		CreateIfMissing: cfg.Corpus.CreateIfMissing,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}

	var artifacts retrain.ModelStore
	if cfg.Model.Persist {
		s, err := storage.NewStore(cfg.Model.Dir)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("open model store: %w", err)
		}
		artifacts = s
	} else {
		logging.Warn().Msg("Model persistence disabled (MODEL_PERSIST=false). Models are refit on every start.")
	}

	rcfg := retrain.DefaultConfig()
	rcfg.ModelName = cfg.Model.Name
	rcfg.KeepVersions = cfg.Model.KeepVersions
	rcfg.Forest = predict.ForestConfig{
		Trees:           cfg.Model.Trees,
		Seed:            cfg.Model.Seed,
		MaxDepth:        cfg.Model.MaxDepth,
		MinSamplesLeaf:  cfg.Model.MinSamplesLeaf,
		MinSamplesSplit: predict.DefaultForestConfig().MinSamplesSplit,
		Workers:         cfg.Model.Workers,
	}
	rcfg.Timeout = cfg.Retrain.Timeout
	rcfg.Persist = cfg.Model.Persist
	rcfg.Synthetic = cfg.Corpus.Synthetic
	rcfg.SyntheticRows = cfg.Corpus.SyntheticRows
	rcfg.Location = loc

	handle := predict.NewHandle()
	pipeline := retrain.New(rcfg, catalog, live, store, handle, artifacts, logger)

	m, err := pipeline.Bootstrap(ctx)
	switch {
	case err == nil:
		logging.Info().Int("version", m.Version).Int("rows", m.Rows).Msg("Prediction model ready")
	case errors.Is(err, models.ErrEmptyCorpus):
		logging.Warn().Msg("Training corpus is empty and synthetic seeding is off (CORPUS_SYNTHETIC=false); serving without a model")
	default:
		logging.Warn().Err(err).Msg("Model bootstrap failed; serving without a model until the next retrain")
	}

	return &LearningComponents{Store: store, Handle: handle, Pipeline: pipeline}, nil
}
