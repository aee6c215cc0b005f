// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package corpus

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/tomtom215/parkcast/internal/models"
)

// CSVConfig configures a CSVStore.
type CSVConfig struct {
	Path            string
	MaxRows         int
	CreateIfMissing bool
}

// CSVStore keeps the corpus in a single CSV file with the header
// name,lat,lng,hour,day,available_spots,total_capacity. Every append
// rewrites the file through a temporary file and a rename.
type CSVStore struct {
	cfg    CSVConfig
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewCSVStore returns a store backed by cfg.Path.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func NewCSVStore(cfg CSVConfig, logger zerolog.Logger) *CSVStore {
	return &CSVStore{
		cfg:    cfg,
		logger: logger.With().Str("component", "corpus").Str("backend", BackendCSV).Logger(),
	}
}

// Path returns the corpus file path.
func (s *CSVStore) Path() string {
	return s.cfg.Path
}

// Load reads the whole corpus.
func (s *CSVStore) Load(ctx context.Context) ([]models.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read()
}

// Len returns the number of rows in the corpus file.
func (s *CSVStore) Len(ctx context.Context) (int, error) {
	rows, err := s.Load(ctx)
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// Append adds rows, applies retention and replaces the file wholesale.
// On any failure the previous file is left untouched.
func (s *CSVStore) Append(ctx context.Context, rows []models.Observation) ([]models.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.read()
	if err != nil {
		return nil, err
	}

	updated := make([]models.Observation, 0, len(existing)+len(rows))
	updated = append(updated, existing...)
	updated = append(updated, rows...)
	updated = keepNewest(updated, s.cfg.MaxRows)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := s.write(updated); err != nil {
		return nil, err
	}

	s.logger.Debug().
		Int("appended", len(rows)).
		Int("total", len(updated)).
		Msg("Corpus appended")

	out := make([]models.Observation, len(updated))
	copy(out, updated)
	return out, nil
}

// Close is a no-op for the file backend.
func (s *CSVStore) Close() error {
	return nil
}

func (s *CSVStore) read() ([]models.Observation, error) {
	f, err := os.Open(s.cfg.Path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && s.cfg.CreateIfMissing {
			return nil, nil
		}
		return nil, &models.PersistError{Op: "open corpus", Path: s.cfg.Path, Err: err}
	}
	defer f.Close()

	rows, err := ReadCSV(f)
	if err != nil {
		return nil, &models.PersistError{Op: "read corpus", Path: s.cfg.Path, Err: err}
	}
	return rows, nil
}

func (s *CSVStore) write(rows []models.Observation) error {
	persistErr := func(op string, err error) error {
		return &models.PersistError{Op: op, Path: s.cfg.Path, Err: err}
	}

	dir := filepath.Dir(s.cfg.Path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return persistErr("create corpus directory", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.cfg.Path)+"-*.tmp")
	if err != nil {
		return persistErr("create corpus file", err)
	}
	tmpName := tmp.Name()
	fail := func(op string, err error) error {
		_ = tmp.Close()        //nolint:errcheck // already failing
		_ = os.Remove(tmpName) //nolint:errcheck // best-effort removal of temp file
		return persistErr(op, err)
	}

	bw := bufio.NewWriter(tmp)
	if err := WriteCSV(bw, rows); err != nil {
		return fail("write corpus", err)
	}
	if err := bw.Flush(); err != nil {
		return fail("write corpus", err)
	}
	if err := tmp.Sync(); err != nil {
		return fail("sync corpus", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // best-effort removal of temp file
		return persistErr("close corpus", err)
	}
	if err := os.Rename(tmpName, s.cfg.Path); err != nil {
		_ = os.Remove(tmpName) //nolint:errcheck // best-effort removal of temp file
		return persistErr("replace corpus", err)
	}
	return nil
}

// ReadCSV parses corpus rows. Columns are located by header name, so extra
// columns and any column order are accepted. An empty input is an empty
// corpus.
func ReadCSV(r io.Reader) ([]models.Observation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	idx := make([]int, len(Columns))
	for i, name := range Columns {
		c, ok := cols[name]
		if !ok {
			return nil, fmt.Errorf("missing column %q", name)
		}
		idx[i] = c
	}

	var rows []models.Observation
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		o, err := parseRecord(rec, idx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, o)
	}
	return rows, nil
}

func parseRecord(rec []string, idx []int) (models.Observation, error) {
	field := func(i int) string { return strings.TrimSpace(rec[idx[i]]) }

	var (
		o   models.Observation
		err error
	)
	o.Name = field(0)
	if o.Lat, err = strconv.ParseFloat(field(1), 64); err != nil {
		return o, fmt.Errorf("lat: %w", err)
	}
	if o.Lng, err = strconv.ParseFloat(field(2), 64); err != nil {
		return o, fmt.Errorf("lng: %w", err)
	}
	ints := []*int{&o.Hour, &o.Day, &o.AvailableSpots, &o.TotalCapacity}
	for k, dst := range ints {
		if *dst, err = parseInt(field(3 + k)); err != nil {
			return o, fmt.Errorf("%s: %w", Columns[3+k], err)
		}
	}
	return o, nil
}

// parseInt accepts integers and integral floats ("12.0"), which some
// spreadsheet exports write for integer columns.
func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if f != float64(int(f)) {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return int(f), nil
}

// WriteCSV writes the header and rows.
func WriteCSV(w io.Writer, rows []models.Observation) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	rec := make([]string, len(Columns))
	for i := range rows {
		o := &rows[i]
		rec[0] = o.Name
		rec[1] = strconv.FormatFloat(o.Lat, 'f', -1, 64)
		rec[2] = strconv.FormatFloat(o.Lng, 'f', -1, 64)
		rec[3] = strconv.Itoa(o.Hour)
		rec[4] = strconv.Itoa(o.Day)
		rec[5] = strconv.Itoa(o.AvailableSpots)
		rec[6] = strconv.Itoa(o.TotalCapacity)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
