// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/parkcast/internal/api"
	"github.com/tomtom215/parkcast/internal/config"
	"github.com/tomtom215/parkcast/internal/journal"
	"github.com/tomtom215/parkcast/internal/logging"
	"github.com/tomtom215/parkcast/internal/parking"
	"github.com/tomtom215/parkcast/internal/predict"
	"github.com/tomtom215/parkcast/internal/supervisor"
	"github.com/tomtom215/parkcast/internal/supervisor/services"
)

//nolint:gocyclo // Main initialization function with sequential setup steps
func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	logger := logging.Logger()

	logging.Info().Msg("Starting Parkcast with supervisor tree")
	logging.Info().
		Str("addr", cfg.Server.Addr()).
		Str("corpus_backend", cfg.Corpus.Backend).
		Bool("journal_enabled", cfg.Journal.Enabled).
		Bool("retrain_enabled", cfg.Retrain.Enabled).
		Msg("Configuration loaded")

	loc, err := cfg.Ranking.Location()
	if err != nil {
		logging.Fatal().Err(err).Str("timezone", cfg.Ranking.Timezone).Msg("Invalid RANK_TIMEZONE")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog, err := initCatalog(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load landmark catalog")
	}

	jc, err := initJournal(cfg, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open live journal")
	}
	defer func() {
		if err := jc.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing live journal")
		}
	}()

	live := initLiveStore(ctx, cfg, catalog, jc, logger)

	learning, err := initLearning(ctx, cfg, catalog, live, loc, logger)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize prediction pipeline")
	}
	defer func() {
		if err := learning.Store.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing corpus store")
		}
	}()

	var predictor parking.Predictor = learning.Handle
	if cfg.Model.PredictionCache > 0 {
		predictor = predict.NewCachedPredictor(learning.Handle, cfg.Model.PredictionCache)
		logging.Info().Int("capacity", cfg.Model.PredictionCache).Msg("Prediction cache enabled")
	}

	ranker := parking.NewRanker(catalog, live, predictor, parking.RankerConfig{
		DefaultRadiusKm: cfg.Ranking.RadiusKm,
		DefaultTopK:     cfg.Ranking.TopK,
		MaxTopK:         cfg.Ranking.MaxTopK,
		LiveWeight:      cfg.Ranking.LiveWeight,
		GridCellKm:      cfg.Ranking.GridCellKm,
		Location:        loc,
	}, logger)

	// Create structured logger for supervisor using our slog adapter
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	// === ADD SERVICES TO SUPERVISOR TREE ===

	// Data layer
	var breaker api.BreakerInspector
	if jc != nil {
		breaker = jc.breaker
		tree.AddDataService(services.NewJournalGCService(jc.badger, cfg.Journal.GCInterval, journal.ErrClosed, logger))
		logging.Info().Dur("interval", cfg.Journal.GCInterval).Msg("Journal GC service added")
	}

	// Learning layer. The service is always present so /learn works even
	// when scheduled retraining is off.
	retrainCfg := services.RetrainServiceConfig{MinGap: cfg.Retrain.MinGap}
	if cfg.Retrain.Enabled {
		retrainCfg.Interval = cfg.Retrain.Interval
		retrainCfg.OnStartup = cfg.Retrain.OnStartup
	}
	retrainSvc := services.NewRetrainService(learning.Pipeline, retrainCfg, logger)
	tree.AddLearningService(retrainSvc)
	logging.Info().
		Bool("scheduled", cfg.Retrain.Enabled).
		Dur("interval", retrainCfg.Interval).
		Msg("Retrain service added")

	// API layer
	handler := api.NewHandler(ranker, live, retrainSvc, learning.Pipeline, learning.Handle, breaker, api.HandlerConfig{
		QueryTimeout: cfg.Ranking.QueryTimeout,
		LearnTimeout: cfg.Retrain.Timeout,
		Location:     loc,
	})
	chiMw := api.NewChiMiddlewareFromConfig(
		cfg.Security.CORSOrigins,
		cfg.Security.RateLimitReqs,
		cfg.Security.RateLimitWindow,
		cfg.Security.RateLimitDisabled,
	)
	router := api.NewRouter(handler, chiMw)

	// A synchronous /learn may hold the response until the retrain timeout.
	writeTimeout := max(cfg.Server.Timeout, cfg.Retrain.Timeout+5*time.Second)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.SetupChi(),
		ReadTimeout:       cfg.Server.Timeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second, logger))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	// === START SUPERVISOR TREE ===

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	// errCh delivers exactly one value when the root supervisor returns.
	var serveErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish...")
		serveErr = <-errCh
	case serveErr = <-errCh:
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		logging.Error().Err(serveErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}

	logging.Info().Msg("Application stopped gracefully")
}
