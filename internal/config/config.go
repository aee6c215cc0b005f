// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration loaded from defaults, an optional
// YAML file and environment variables.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: Built-in sensible defaults for all optional settings
//  2. Config File: Optional YAML config file (config.yaml)
//  3. Environment Variables: Override any setting via environment variables
//
// Configuration Categories:
//
//  1. Serving: Server, Security, Logging
//  2. Domain: Catalog, Ranking
//  3. Learning: Corpus, Model, Retrain
//  4. Durability: Journal
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Security SecurityConfig `koanf:"security"`
	Logging  LoggingConfig  `koanf:"logging"`
	Catalog  CatalogConfig  `koanf:"catalog"`
	Ranking  RankingConfig  `koanf:"ranking"`
	Corpus   CorpusConfig   `koanf:"corpus"`
	Model    ModelConfig    `koanf:"model"`
	Retrain  RetrainConfig  `koanf:"retrain"`
	Journal  JournalConfig  `koanf:"journal"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port    int           `koanf:"port"`
	Host    string        `koanf:"host"`
	Timeout time.Duration `koanf:"timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	// Default: false
	Caller bool `koanf:"caller"`
}

// CatalogConfig locates the landmark catalog.
type CatalogConfig struct {
	// Path to a CSV catalog (name,lat,lng,total_capacity). Empty uses the
	// built-in campus landmarks.
	Path string `koanf:"path"`

	// SeedRatio sets the initial free spots as a share of capacity.
	// Default: 0.4
	SeedRatio float64 `koanf:"seed_ratio"`
}

// RankingConfig tunes the geospatial ranker.
type RankingConfig struct {
	RadiusKm     float64       `koanf:"radius_km"`
	TopK         int           `koanf:"top_k"`
	MaxTopK      int           `koanf:"max_top_k"`
	LiveWeight   float64       `koanf:"live_weight"`
	GridCellKm   float64       `koanf:"grid_cell_km"`
	Timezone     string        `koanf:"timezone"`
	QueryTimeout time.Duration `koanf:"query_timeout"`
}

// Location resolves Timezone. "Local" and "" map to time.Local.
func (r RankingConfig) Location() (*time.Location, error) {
	if r.Timezone == "" || r.Timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(r.Timezone)
}

// CorpusConfig selects and tunes the training corpus backend.
type CorpusConfig struct {
	// Backend is csv or duckdb. Default: csv
	Backend string `koanf:"backend"`

	Path            string `koanf:"path"`
	DuckDBPath      string `koanf:"duckdb_path"`
	MaxRows         int    `koanf:"max_rows"`
	CreateIfMissing bool   `koanf:"create_if_missing"`

	// Synthetic generates a corpus when none exists yet.
	Synthetic     bool `koanf:"synthetic"`
	SyntheticRows int  `koanf:"synthetic_rows"`
}

// ModelConfig holds forest hyperparameters and artifact storage.
type ModelConfig struct {
	Dir            string `koanf:"dir"`
	Name           string `koanf:"name"`
	KeepVersions   int    `koanf:"keep_versions"`
	Trees          int    `koanf:"trees"`
	Seed           uint64 `koanf:"seed"`
	MaxDepth       int    `koanf:"max_depth"`
	MinSamplesLeaf int    `koanf:"min_samples_leaf"`
	Workers        int    `koanf:"workers"`
	Persist        bool   `koanf:"persist"`

	// PredictionCache bounds the per-model prediction cache. 0 disables it.
	PredictionCache int `koanf:"prediction_cache"`
}

// RetrainConfig schedules and bounds retraining.
type RetrainConfig struct {
	Enabled   bool          `koanf:"enabled"`
	Interval  time.Duration `koanf:"interval"`
	OnStartup bool          `koanf:"on_startup"`
	Timeout   time.Duration `koanf:"timeout"`

	// MinGap is the minimum spacing between two manual triggers.
	MinGap time.Duration `koanf:"min_gap"`
}

// JournalConfig holds the live-count journal settings.
type JournalConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Path       string        `koanf:"path"`
	SyncWrites bool          `koanf:"sync_writes"`
	GCInterval time.Duration `koanf:"gc_interval"`

	// Circuit breaker around journal writes.
	BreakerFailures int           `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// Load reads configuration using Koanf (defaults, config file, env vars).
func Load() (*Config, error) {
	return LoadWithKoanf()
}
