// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package corpus

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/parkcast/internal/models"
)

// Backend names accepted by Open.
const (
	BackendCSV    = "csv"
	BackendDuckDB = "duckdb"
)

// Columns is the corpus column order shared by every backend.
var Columns = []string{"name", "lat", "lng", "hour", "day", "available_spots", "total_capacity"}

// Store is the append-only history of observations the model is fitted on.
type Store interface {
	// Load returns the full corpus in append order.
	Load(ctx context.Context) ([]models.Observation, error)

	// Append adds rows and returns the full updated corpus. Either all rows
	// are stored or none are.
	Append(ctx context.Context, rows []models.Observation) ([]models.Observation, error)

	// Len returns the number of stored rows.
	Len(ctx context.Context) (int, error)

	// Close releases backend resources.
	Close() error
}

// Config selects and configures a backend.
type Config struct {
	Backend string

	// CSVPath is the corpus file for the csv backend.
	CSVPath string

	// DuckDBPath is the database file for the duckdb backend.
	DuckDBPath string

	// MaxRows keeps only the newest rows after each append. Zero keeps all.
	MaxRows int

	// CreateIfMissing lets the csv backend treat an absent file as empty.
	CreateIfMissing bool
}

// Open returns the configured backend.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	switch cfg.Backend {
	case "", BackendCSV:
		return NewCSVStore(CSVConfig{
			Path:            cfg.CSVPath,
			MaxRows:         cfg.MaxRows,
			CreateIfMissing: cfg.CreateIfMissing,
		}, logger), nil
	case BackendDuckDB:
		return OpenDuckDB(ctx, cfg.DuckDBPath, cfg.MaxRows, logger)
	default:
		return nil, fmt.Errorf("unknown corpus backend %q", cfg.Backend)
	}
}

// keepNewest applies the retention window to rows in append order.
func keepNewest(rows []models.Observation, maxRows int) []models.Observation {
	if maxRows <= 0 || len(rows) <= maxRows {
		return rows
	}
	return rows[len(rows)-maxRows:]
}
