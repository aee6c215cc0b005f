// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/tomtom215/parkcast/internal/models"
)

// keyPrefix namespaces live counter entries.
const keyPrefix = "live:"

var (
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("journal is closed")
)

// Config configures a BadgerJournal.
type Config struct {
	// Path is the database directory. Ignored when InMemory is set.
	Path string

	// InMemory keeps everything in RAM (tests).
	InMemory bool

	// SyncWrites fsyncs every record before it is acknowledged.
	SyncWrites bool

	// GCRatio is the value-log discard ratio passed to RunValueLogGC.
	GCRatio float64

	// CloseTimeout bounds Close.
	CloseTimeout time.Duration
}

// DefaultConfig returns durable defaults for path.
func DefaultConfig(path string) Config {
	return Config{
		Path:         path,
		SyncWrites:   true,
		GCRatio:      0.5,
		CloseTimeout: 30 * time.Second,
	}
}

// BadgerJournal stores the latest status per landmark in BadgerDB under
// "live:<name>" as JSON. Each Record overwrites the previous value, so the
// store holds one key per landmark and GC reclaims the superseded versions.
type BadgerJournal struct {
	db     *badger.DB
	cfg    Config
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// Open opens (or creates) the journal.
//
//nolint:gocritic // hugeParam: logger passed by value for zerolog chaining
func Open(cfg Config, logger zerolog.Logger) (*BadgerJournal, error) {
	if cfg.GCRatio <= 0 || cfg.GCRatio >= 1 {
		cfg.GCRatio = 0.5
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 30 * time.Second
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("journal path is required")
		}
		opts = badger.DefaultOptions(cfg.Path)
		opts.SyncWrites = cfg.SyncWrites
	}

	// Reduce logging verbosity
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, &models.PersistError{Op: "open live journal", Path: cfg.Path, Err: err}
	}

	j := &BadgerJournal{
		db:     db,
		cfg:    cfg,
		logger: logger.With().Str("component", "journal").Logger(),
	}

	j.logger.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Bool("sync_writes", cfg.SyncWrites).
		Msg("Live journal opened")
	return j, nil
}

func (j *BadgerJournal) checkOpen() error {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.closed {
		return ErrClosed
	}
	return nil
}

// Record stores status as the latest value for its landmark.
func (j *BadgerJournal) Record(ctx context.Context, status models.LiveStatus) error {
	if err := j.checkOpen(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if status.Name == "" {
		return &models.ValidationError{Field: "name", Reason: "must not be empty"}
	}

	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal live status: %w", err)
	}

	key := []byte(keyPrefix + status.Name)
	if err := j.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, data)
	}); err != nil {
		return fmt.Errorf("write to BadgerDB: %w", err)
	}
	return nil
}

// Entries returns every stored status.
func (j *BadgerJournal) Entries(ctx context.Context) ([]models.LiveStatus, error) {
	if err := j.checkOpen(); err != nil {
		return nil, err
	}

	var out []models.LiveStatus
	err := j.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(keyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			item := it.Item()
			var st models.LiveStatus
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &st)
			})
			if err != nil {
				j.logger.Warn().Err(err).Str("key", string(item.Key())).Msg("Journal failed to unmarshal entry")
				continue
			}
			out = append(out, st)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("iterate live journal: %w", err)
	}
	return out, nil
}

// Restore returns the last recorded free-spot count per landmark.
func (j *BadgerJournal) Restore(ctx context.Context) (map[string]int, error) {
	entries, err := j.Entries(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(entries))
	for _, st := range entries {
		out[st.Name] = st.Available
	}
	return out, nil
}

// RunGC reclaims value-log space until Badger reports nothing to rewrite.
func (j *BadgerJournal) RunGC() error {
	if err := j.checkOpen(); err != nil {
		return err
	}
	if j.cfg.InMemory {
		return nil
	}

	for {
		err := j.db.RunValueLogGC(j.cfg.GCRatio)
		if errors.Is(err, badger.ErrNoRewrite) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close shuts the database down, giving up after CloseTimeout.
func (j *BadgerJournal) Close() error {
	j.mu.Lock()
	if j.closed {
		j.mu.Unlock()
		return nil
	}
	j.closed = true
	j.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		done <- j.db.Close()
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("close BadgerDB: %w", err)
		}
		j.logger.Info().Msg("Live journal closed")
		return nil
	case <-time.After(j.cfg.CloseTimeout):
		j.logger.Warn().Dur("timeout", j.cfg.CloseTimeout).Msg("BadgerDB close timed out")
		return fmt.Errorf("badgerdb close timeout after %v", j.cfg.CloseTimeout)
	}
}
