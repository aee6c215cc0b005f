// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/parkcast/config.yaml",
	"/etc/parkcast/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:    10000,
			Host:    "0.0.0.0",
			Timeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   time.Minute,
			RateLimitDisabled: false,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Catalog: CatalogConfig{
			Path:      "", // built-in landmarks
			SeedRatio: 0.4,
		},
		Ranking: RankingConfig{
			RadiusKm:     100,
			TopK:         10,
			MaxTopK:      100,
			LiveWeight:   0.8,
			GridCellKm:   25,
			Timezone:     "Local",
			QueryTimeout: 5 * time.Second,
		},
		Corpus: CorpusConfig{
			Backend:         "csv",
			Path:            "data/parking_data.csv",
			DuckDBPath:      "data/parking.duckdb",
			MaxRows:         200000,
			CreateIfMissing: true,
			Synthetic:       true,
			SyntheticRows:   5000,
		},
		Model: ModelConfig{
			Dir:            "data/models",
			Name:           "parking",
			KeepVersions:   5,
			Trees:          100,
			Seed:           42,
			MaxDepth:       0, // unlimited
			MinSamplesLeaf: 1,
			Workers:        0, // GOMAXPROCS
			Persist:        true,

			PredictionCache: 4096,
		},
		Retrain: RetrainConfig{
			Enabled:   true,
			Interval:  time.Hour,
			OnStartup: false,
			Timeout:   5 * time.Minute,
			MinGap:    10 * time.Second,
		},
		Journal: JournalConfig{
			Enabled:         true,
			Path:            "data/live",
			SyncWrites:      true,
			GCInterval:      10 * time.Minute,
			BreakerFailures: 5,
			BreakerTimeout:  30 * time.Second,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Built-in defaults
//  2. Config file (config.yaml, optional)
//  3. Environment variables (highest priority)
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	// RANK_RADIUS_KM -> ranking.radius_km
	// PORT -> server.port
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// HTTP_PORT takes precedence over the platform-provided PORT
	if port := os.Getenv("HTTP_PORT"); port != "" {
		if err := k.Set("server.port", port); err != nil {
			return nil, fmt.Errorf("failed to set server.port: %w", err)
		}
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
var envMappings = map[string]string{
	// Server
	"port":         "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Catalog
	"catalog_path":       "catalog.path",
	"catalog_seed_ratio": "catalog.seed_ratio",

	// Ranking
	"rank_radius_km":     "ranking.radius_km",
	"rank_top_k":         "ranking.top_k",
	"rank_max_top_k":     "ranking.max_top_k",
	"rank_live_weight":   "ranking.live_weight",
	"rank_grid_cell_km":  "ranking.grid_cell_km",
	"rank_timezone":      "ranking.timezone",
	"rank_query_timeout": "ranking.query_timeout",

	// Corpus
	"corpus_backend":           "corpus.backend",
	"corpus_path":              "corpus.path",
	"corpus_duckdb_path":       "corpus.duckdb_path",
	"corpus_max_rows":          "corpus.max_rows",
	"corpus_create_if_missing": "corpus.create_if_missing",
	"corpus_synthetic":         "corpus.synthetic",
	"corpus_synthetic_rows":    "corpus.synthetic_rows",

	// Model
	"model_dir":              "model.dir",
	"model_name":             "model.name",
	"model_keep_versions":    "model.keep_versions",
	"model_trees":            "model.trees",
	"model_seed":             "model.seed",
	"model_max_depth":        "model.max_depth",
	"model_min_samples_leaf": "model.min_samples_leaf",
	"model_workers":          "model.workers",
	"model_persist":          "model.persist",
	"model_prediction_cache": "model.prediction_cache",

	// Retrain
	"retrain_enabled":    "retrain.enabled",
	"retrain_interval":   "retrain.interval",
	"retrain_on_startup": "retrain.on_startup",
	"retrain_timeout":    "retrain.timeout",
	"retrain_min_gap":    "retrain.min_gap",

	// Journal
	"journal_enabled":          "journal.enabled",
	"journal_path":             "journal.path",
	"journal_sync_writes":      "journal.sync_writes",
	"journal_gc_interval":      "journal.gc_interval",
	"journal_breaker_failures": "journal.breaker_failures",
	"journal_breaker_timeout":  "journal.breaker_timeout",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// HTTP_PORT is applied after the provider runs so it wins over PORT.
//
// Examples:
//   - PORT -> server.port
//   - RANK_TOP_K -> ranking.top_k
//   - MODEL_TREES -> model.trees
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// Unmapped keys are skipped so unrelated environment variables do not
	// pollute the config.
	return ""
}
