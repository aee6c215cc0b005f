// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/knadh/koanf/v2"
)

// TestDefaultConfig verifies that defaultConfig() returns proper defaults
func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 10000 {
		t.Errorf("Server.Port = %d, want 10000", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if len(cfg.Security.CORSOrigins) != 1 || cfg.Security.CORSOrigins[0] != "*" {
		t.Errorf("Security.CORSOrigins = %v, want [*]", cfg.Security.CORSOrigins)
	}
	if cfg.Catalog.SeedRatio != 0.4 {
		t.Errorf("Catalog.SeedRatio = %v, want 0.4", cfg.Catalog.SeedRatio)
	}
	if cfg.Ranking.RadiusKm != 100 || cfg.Ranking.TopK != 10 || cfg.Ranking.LiveWeight != 0.8 {
		t.Errorf("Ranking = %+v, want radius 100, top_k 10, live weight 0.8", cfg.Ranking)
	}
	if cfg.Corpus.Backend != "csv" || cfg.Corpus.Path != "data/parking_data.csv" {
		t.Errorf("Corpus = %+v, want csv at data/parking_data.csv", cfg.Corpus)
	}
	if cfg.Model.Trees != 100 || cfg.Model.Seed != 42 {
		t.Errorf("Model.Trees/Seed = %d/%d, want 100/42", cfg.Model.Trees, cfg.Model.Seed)
	}
	if cfg.Retrain.Interval != time.Hour {
		t.Errorf("Retrain.Interval = %v, want 1h", cfg.Retrain.Interval)
	}
	if !cfg.Journal.Enabled || cfg.Journal.Path != "data/live" {
		t.Errorf("Journal = %+v, want enabled at data/live", cfg.Journal)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want info", cfg.Logging.Level)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate, got %v", err)
	}
}

// TestEnvTransformFunc verifies environment variable name transformations
func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"PORT", "server.port"},
		{"HTTP_HOST", "server.host"},
		{"HTTP_TIMEOUT", "server.timeout"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"RATE_LIMIT_REQUESTS", "security.rate_limit_reqs"},
		{"DISABLE_RATE_LIMIT", "security.rate_limit_disabled"},
		{"LOG_LEVEL", "logging.level"},
		{"CATALOG_SEED_RATIO", "catalog.seed_ratio"},
		{"RANK_TOP_K", "ranking.top_k"},
		{"RANK_TIMEZONE", "ranking.timezone"},
		{"CORPUS_BACKEND", "corpus.backend"},
		{"CORPUS_CREATE_IF_MISSING", "corpus.create_if_missing"},
		{"MODEL_MIN_SAMPLES_LEAF", "model.min_samples_leaf"},
		{"RETRAIN_MIN_GAP", "retrain.min_gap"},
		{"JOURNAL_BREAKER_TIMEOUT", "journal.breaker_timeout"},
		{"log_format", "logging.format"},

		// Unmapped
		{"HOME", ""},
		{"PATH", ""},
		{"HTTP_PORT", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := envTransformFunc(tt.input); got != tt.expected {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestProcessSliceFields(t *testing.T) {
	k := koanf.New(".")
	if err := k.Set("security.cors_origins", " https://a.example , https://b.example,,"); err != nil {
		t.Fatal(err)
	}
	if err := processSliceFields(k); err != nil {
		t.Fatalf("processSliceFields() error = %v", err)
	}
	got := k.Strings("security.cors_origins")
	if len(got) != 2 || got[0] != "https://a.example" || got[1] != "https://b.example" {
		t.Errorf("cors_origins = %v", got)
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Run("env override", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, path)
		if got := findConfigFile(); got != path {
			t.Errorf("findConfigFile() = %q, want %q", got, path)
		}
	})

	t.Run("missing env path falls through", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, filepath.Join(dir, "missing.yaml"))
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty", got)
		}
	})
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("PORT", "8080")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("RANK_RADIUS_KM", "2.5")
	t.Setenv("RANK_QUERY_TIMEOUT", "750ms")
	t.Setenv("CORPUS_BACKEND", "duckdb")
	t.Setenv("MODEL_SEED", "7")
	t.Setenv("JOURNAL_ENABLED", "false")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if len(cfg.Security.CORSOrigins) != 2 {
		t.Errorf("Security.CORSOrigins = %v, want 2 entries", cfg.Security.CORSOrigins)
	}
	if cfg.Ranking.RadiusKm != 2.5 {
		t.Errorf("Ranking.RadiusKm = %v, want 2.5", cfg.Ranking.RadiusKm)
	}
	if cfg.Ranking.QueryTimeout != 750*time.Millisecond {
		t.Errorf("Ranking.QueryTimeout = %v, want 750ms", cfg.Ranking.QueryTimeout)
	}
	if cfg.Corpus.Backend != "duckdb" {
		t.Errorf("Corpus.Backend = %q, want duckdb", cfg.Corpus.Backend)
	}
	if cfg.Model.Seed != 7 {
		t.Errorf("Model.Seed = %d, want 7", cfg.Model.Seed)
	}
	if cfg.Journal.Enabled {
		t.Error("Journal.Enabled should be false")
	}

	// Defaults still apply for unset values
	if cfg.Model.Trees != 100 {
		t.Errorf("Model.Trees = %d, want 100 (default)", cfg.Model.Trees)
	}
}

func TestLoadWithKoanf_HTTPPortWinsOverPort(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("PORT", "8080")
	t.Setenv("HTTP_PORT", "9090")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configContent := `
server:
  port: 8888
  host: "127.0.0.1"

ranking:
  top_k: 3
  timezone: "UTC"

model:
  trees: 25
  persist: false

logging:
  level: "warn"
`
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, configPath)
	// Env overrides the file
	t.Setenv("LOG_LEVEL", "error")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 8888 || cfg.Server.Host != "127.0.0.1" {
		t.Errorf("Server = %+v, want 127.0.0.1:8888", cfg.Server)
	}
	if cfg.Server.Addr() != "127.0.0.1:8888" {
		t.Errorf("Server.Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Ranking.TopK != 3 {
		t.Errorf("Ranking.TopK = %d, want 3", cfg.Ranking.TopK)
	}
	loc, err := cfg.Ranking.Location()
	if err != nil || loc.String() != "UTC" {
		t.Errorf("Ranking.Location() = %v, %v", loc, err)
	}
	if cfg.Model.Trees != 25 || cfg.Model.Persist {
		t.Errorf("Model = %+v, want 25 trees without persistence", cfg.Model)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error (env override)", cfg.Logging.Level)
	}
	// Untouched sections keep defaults
	if cfg.Corpus.MaxRows != 200000 {
		t.Errorf("Corpus.MaxRows = %d, want 200000", cfg.Corpus.MaxRows)
	}
}

func TestLoadWithKoanf_InvalidValue(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("RANK_LIVE_WEIGHT", "1.5")

	if _, err := LoadWithKoanf(); err == nil {
		t.Error("LoadWithKoanf() should reject RANK_LIVE_WEIGHT=1.5")
	}
}

func TestLoadWithKoanf_PredictionCache(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "none.yaml"))
	t.Setenv("MODEL_PREDICTION_CACHE", "0")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Model.PredictionCache != 0 {
		t.Errorf("Model.PredictionCache = %d, want 0", cfg.Model.PredictionCache)
	}
}
