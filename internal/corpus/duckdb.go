// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/rs/zerolog"

	"github.com/tomtom215/parkcast/internal/models"
)

var schemaSQL = []string{
	`CREATE SEQUENCE IF NOT EXISTS parking_observations_seq START 1`,
	`CREATE TABLE IF NOT EXISTS parking_observations (
	seq             BIGINT PRIMARY KEY DEFAULT nextval('parking_observations_seq'),
	name            VARCHAR NOT NULL,
	lat             DOUBLE NOT NULL,
	lng             DOUBLE NOT NULL,
	hour            INTEGER NOT NULL,
	day             INTEGER NOT NULL,
	available_spots INTEGER NOT NULL,
	total_capacity  INTEGER NOT NULL
)`,
}

// DuckDBStore keeps the corpus in a DuckDB table. Row order is the
// sequence column, so retention drops the lowest sequence numbers.
type DuckDBStore struct {
	conn    *sql.DB
	path    string
	maxRows int
	logger  zerolog.Logger

	// serialises append+retention so Append can return a consistent corpus
	mu sync.Mutex
}

// OpenDuckDB opens (creating if needed) the corpus database at path.
// An empty path or ":memory:" opens an in-memory database.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func OpenDuckDB(ctx context.Context, path string, maxRows int, logger zerolog.Logger) (*DuckDBStore, error) {
	persistErr := func(op string, err error) error {
		return &models.PersistError{Op: op, Path: path, Err: err}
	}

	target := path
	if target == "" || target == ":memory:" {
		target = ":memory:"
	} else if dir := filepath.Dir(target); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, persistErr("create corpus directory", err)
		}
	}

	// Extensions are not needed; keep DuckDB from reaching the network.
	connStr := target + "?autoinstall_known_extensions=false&autoload_known_extensions=false"
	conn, err := sql.Open("duckdb", connStr)
	if err != nil {
		return nil, persistErr("open corpus database", err)
	}

	for _, stmt := range schemaSQL {
		if _, err := conn.ExecContext(ctx, stmt); err != nil {
			_ = conn.Close() //nolint:errcheck // already failing
			return nil, persistErr("create corpus schema", err)
		}
	}

	return &DuckDBStore{
		conn:    conn,
		path:    path,
		maxRows: maxRows,
		logger:  logger.With().Str("component", "corpus").Str("backend", BackendDuckDB).Logger(),
	}, nil
}

// Load returns every row ordered by insertion.
func (s *DuckDBStore) Load(ctx context.Context) ([]models.Observation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

func (s *DuckDBStore) load(ctx context.Context) ([]models.Observation, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT name, lat, lng, hour, day, available_spots, total_capacity
		FROM parking_observations
		ORDER BY seq`)
	if err != nil {
		return nil, &models.PersistError{Op: "query corpus", Path: s.path, Err: err}
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // error surfaced by rows.Err

	var out []models.Observation
	for rows.Next() {
		var o models.Observation
		if err := rows.Scan(&o.Name, &o.Lat, &o.Lng, &o.Hour, &o.Day, &o.AvailableSpots, &o.TotalCapacity); err != nil {
			return nil, &models.PersistError{Op: "scan corpus", Path: s.path, Err: err}
		}
		out = append(out, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &models.PersistError{Op: "query corpus", Path: s.path, Err: err}
	}
	return out, nil
}

// Len counts the stored rows.
func (s *DuckDBStore) Len(ctx context.Context) (int, error) {
	var n int
	if err := s.conn.QueryRowContext(ctx, `SELECT count(*) FROM parking_observations`).Scan(&n); err != nil {
		return 0, &models.PersistError{Op: "count corpus", Path: s.path, Err: err}
	}
	return n, nil
}

// Append inserts rows and applies retention in one transaction, then
// returns the full corpus.
func (s *DuckDBStore) Append(ctx context.Context, rows []models.Observation) (out []models.Observation, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	persistErr := func(op string, err error) error {
		return &models.PersistError{Op: op, Path: s.path, Err: err}
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, persistErr("begin corpus append", err)
	}
	committed := false
	defer func() {
		if err != nil && !committed {
			if rbErr := tx.Rollback(); rbErr != nil {
				s.logger.Error().
					Err(rbErr).
					AnErr("original_error", err).
					Msg("Corpus append rollback failed")
			}
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO parking_observations
			(name, lat, lng, hour, day, available_spots, total_capacity)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, persistErr("prepare corpus append", err)
	}
	defer func() {
		if closeErr := stmt.Close(); closeErr != nil {
			s.logger.Warn().Err(closeErr).Msg("Failed to close prepared statement")
		}
	}()

	for i := range rows {
		o := &rows[i]
		if _, err = stmt.ExecContext(ctx, o.Name, o.Lat, o.Lng, o.Hour, o.Day, o.AvailableSpots, o.TotalCapacity); err != nil {
			return nil, persistErr("insert corpus row", fmt.Errorf("row %d: %w", i, err))
		}
	}

	if s.maxRows > 0 {
		if _, err = tx.ExecContext(ctx, `
			DELETE FROM parking_observations
			WHERE seq NOT IN (
				SELECT seq FROM parking_observations ORDER BY seq DESC LIMIT ?
			)`, s.maxRows); err != nil {
			return nil, persistErr("apply corpus retention", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return nil, persistErr("commit corpus append", err)
	}
	committed = true

	out, err = s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("appended", len(rows)).
		Int("total", len(out)).
		Msg("Corpus appended")
	return out, nil
}

// Close closes the database.
func (s *DuckDBStore) Close() error {
	return s.conn.Close()
}
