// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package config

import (
	"fmt"
	"strings"
)

// Validate checks that configuration values are present and in range.
// Messages name the environment variable that controls the failing value.
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateServer,
		c.validateSecurity,
		c.validateLogging,
		c.validateCatalog,
		c.validateRanking,
		c.validateCorpus,
		c.validateModel,
		c.validateRetrain,
		c.validateJournal,
	}
	for _, v := range validators {
		if err := v(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive, got %v", c.Server.Timeout)
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < 1 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be at least 1, got %d", c.Security.RateLimitReqs)
	}
	if c.Security.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be positive, got %v", c.Security.RateLimitWindow)
	}
	return nil
}

// validateLogging validates the logging configuration
func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateCatalog() error {
	if c.Catalog.SeedRatio < 0 || c.Catalog.SeedRatio > 1 {
		return fmt.Errorf("CATALOG_SEED_RATIO must be between 0 and 1, got %v", c.Catalog.SeedRatio)
	}
	return nil
}

func (c *Config) validateRanking() error {
	r := c.Ranking
	if r.RadiusKm <= 0 {
		return fmt.Errorf("RANK_RADIUS_KM must be positive, got %v", r.RadiusKm)
	}
	if r.MaxTopK < 1 {
		return fmt.Errorf("RANK_MAX_TOP_K must be at least 1, got %d", r.MaxTopK)
	}
	if r.TopK < 1 || r.TopK > r.MaxTopK {
		return fmt.Errorf("RANK_TOP_K must be between 1 and RANK_MAX_TOP_K (%d), got %d", r.MaxTopK, r.TopK)
	}
	if r.LiveWeight < 0 || r.LiveWeight > 1 {
		return fmt.Errorf("RANK_LIVE_WEIGHT must be between 0 and 1, got %v", r.LiveWeight)
	}
	if r.GridCellKm <= 0 {
		return fmt.Errorf("RANK_GRID_CELL_KM must be positive, got %v", r.GridCellKm)
	}
	if r.QueryTimeout <= 0 {
		return fmt.Errorf("RANK_QUERY_TIMEOUT must be positive, got %v", r.QueryTimeout)
	}
	if _, err := r.Location(); err != nil {
		return fmt.Errorf("RANK_TIMEZONE is invalid: %w", err)
	}
	return nil
}

func (c *Config) validateCorpus() error {
	switch c.Corpus.Backend {
	case "csv":
		if c.Corpus.Path == "" {
			return fmt.Errorf("CORPUS_PATH is required when CORPUS_BACKEND=csv")
		}
	case "duckdb":
		// An empty path selects an in-memory database.
	default:
		return fmt.Errorf("CORPUS_BACKEND must be one of: csv, duckdb")
	}
	if c.Corpus.MaxRows < 0 {
		return fmt.Errorf("CORPUS_MAX_ROWS must not be negative, got %d", c.Corpus.MaxRows)
	}
	if c.Corpus.Synthetic && c.Corpus.SyntheticRows < 1 {
		return fmt.Errorf("CORPUS_SYNTHETIC_ROWS must be at least 1 when CORPUS_SYNTHETIC=true")
	}
	return nil
}

func (c *Config) validateModel() error {
	m := c.Model
	if m.Name == "" || strings.ContainsAny(m.Name, `/\`) {
		return fmt.Errorf("MODEL_NAME must be a non-empty name without path separators")
	}
	if m.Persist && m.Dir == "" {
		return fmt.Errorf("MODEL_DIR is required when MODEL_PERSIST=true")
	}
	if m.KeepVersions < 0 {
		return fmt.Errorf("MODEL_KEEP_VERSIONS must not be negative, got %d", m.KeepVersions)
	}
	if m.Trees < 1 {
		return fmt.Errorf("MODEL_TREES must be at least 1, got %d", m.Trees)
	}
	if m.MaxDepth < 0 {
		return fmt.Errorf("MODEL_MAX_DEPTH must not be negative, got %d", m.MaxDepth)
	}
	if m.MinSamplesLeaf < 1 {
		return fmt.Errorf("MODEL_MIN_SAMPLES_LEAF must be at least 1, got %d", m.MinSamplesLeaf)
	}
	if m.Workers < 0 {
		return fmt.Errorf("MODEL_WORKERS must not be negative, got %d", m.Workers)
	}
	if m.PredictionCache < 0 {
		return fmt.Errorf("MODEL_PREDICTION_CACHE must not be negative, got %d", m.PredictionCache)
	}
	return nil
}

func (c *Config) validateRetrain() error {
	if c.Retrain.Timeout <= 0 {
		return fmt.Errorf("RETRAIN_TIMEOUT must be positive, got %v", c.Retrain.Timeout)
	}
	if c.Retrain.Enabled && c.Retrain.Interval <= 0 {
		return fmt.Errorf("RETRAIN_INTERVAL must be positive when RETRAIN_ENABLED=true")
	}
	if c.Retrain.MinGap < 0 {
		return fmt.Errorf("RETRAIN_MIN_GAP must not be negative, got %v", c.Retrain.MinGap)
	}
	return nil
}

func (c *Config) validateJournal() error {
	if !c.Journal.Enabled {
		return nil
	}
	if c.Journal.Path == "" {
		return fmt.Errorf("JOURNAL_PATH is required when JOURNAL_ENABLED=true")
	}
	if c.Journal.GCInterval <= 0 {
		return fmt.Errorf("JOURNAL_GC_INTERVAL must be positive, got %v", c.Journal.GCInterval)
	}
	if c.Journal.BreakerFailures < 1 {
		return fmt.Errorf("JOURNAL_BREAKER_FAILURES must be at least 1, got %d", c.Journal.BreakerFailures)
	}
	if c.Journal.BreakerTimeout <= 0 {
		return fmt.Errorf("JOURNAL_BREAKER_TIMEOUT must be positive, got %v", c.Journal.BreakerTimeout)
	}
	return nil
}

// validLogLevels defines the allowed log levels
var validLogLevels = map[string]bool{
	"trace": true,
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// validLogFormats defines the allowed log formats
var validLogFormats = map[string]bool{
	"json":    true,
	"console": true,
}
