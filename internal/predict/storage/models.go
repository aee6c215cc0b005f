// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package storage

import (
	"bytes"
	"compress/gzip"
	"context"
	"crypto/sha256"
	"encoding/gob"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/tomtom215/parkcast/internal/models"
	"github.com/tomtom215/parkcast/internal/predict"
)

const fileSuffix = ".gob.gz"

// ModelMetadata describes a stored model artifact.
type ModelMetadata struct {
	// Name is the model family name (e.g., "parking").
	Name string `json:"name"`

	// Version is the model version (monotonically increasing).
	Version int `json:"version"`

	// TrainedAt is when the model was fitted.
	TrainedAt time.Time `json:"trained_at"`

	// SavedAt is when the artifact was written.
	SavedAt time.Time `json:"saved_at"`

	// Rows is the corpus size the model was fitted on.
	Rows int `json:"rows"`

	// Trees and Nodes describe the ensemble.
	Trees int `json:"trees"`
	Nodes int `json:"nodes"`

	// Checksum is the SHA-256 of the uncompressed model encoding.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed size.
	SizeBytes int64 `json:"size_bytes"`

	// TrainingDurationMS is how long fitting took.
	TrainingDurationMS int64 `json:"training_duration_ms"`
}

// storedFile is the on-disk format for model files.
type storedFile struct {
	Metadata       ModelMetadata
	CompressedData []byte
}

// Store manages versioned model artifacts in one directory.
type Store struct {
	baseDir string
	mu      sync.RWMutex

	// latest version per model name
	versions map[string]int
}

// NewStore opens (creating if needed) a model store at baseDir.
func NewStore(baseDir string) (*Store, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, &models.PersistError{Op: "create model directory", Path: baseDir, Err: err}
	}

	s := &Store{
		baseDir:  baseDir,
		versions: make(map[string]int),
	}

	if err := s.scanModels(); err != nil {
		return nil, &models.PersistError{Op: "scan model directory", Path: baseDir, Err: err}
	}

	return s, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.baseDir
}

func (s *Store) scanModels() error {
	found, err := s.listVersions("")
	if err != nil {
		return err
	}
	for name, versions := range found {
		s.versions[name] = slices.Max(versions)
	}
	return nil
}

// listVersions returns every stored version per name. An empty filter
// matches all names.
func (s *Store) listVersions(filter string) (map[string][]int, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, err
	}

	out := make(map[string][]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		base, ok := strings.CutSuffix(entry.Name(), fileSuffix)
		if !ok {
			continue
		}
		name, version := parseModelFilename(base)
		if name == "" || (filter != "" && name != filter) {
			continue
		}
		out[name] = append(out[name], version)
	}
	return out, nil
}

// parseModelFilename splits "parking_v3" into ("parking", 3).
func parseModelFilename(base string) (name string, version int) {
	i := strings.LastIndex(base, "_v")
	if i <= 0 {
		return "", 0
	}
	v, err := strconv.Atoi(base[i+2:])
	if err != nil || v <= 0 {
		return "", 0
	}
	return base[:i], v
}

// Save writes m as version m.Version of name. The file is written to a
// temporary path and renamed so a crash never leaves a truncated artifact
// under the final name.
//
//nolint:gocritic // meta passed by value is acceptable for this write operation
func (s *Store) Save(ctx context.Context, name string, m *predict.Model, meta ModelMetadata) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m == nil || m.Forest == nil {
		return fmt.Errorf("save model %s: nil model", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filename := s.modelPath(name, m.Version)
	persistErr := func(op string, err error) error {
		return &models.PersistError{Op: op, Path: filename, Err: err}
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(m); err != nil {
		return persistErr("encode model", err)
	}
	rawData := buf.Bytes()

	hash := sha256.Sum256(rawData)
	meta.Checksum = hex.EncodeToString(hash[:])

	var compressed bytes.Buffer
	gzw := gzip.NewWriter(&compressed)
	if _, err := gzw.Write(rawData); err != nil {
		return persistErr("compress model", err)
	}
	if err := gzw.Close(); err != nil {
		return persistErr("compress model", err)
	}

	meta.Name = name
	meta.Version = m.Version
	meta.TrainedAt = m.TrainedAt
	meta.Rows = m.Rows
	meta.Trees = len(m.Forest.Trees)
	meta.Nodes = m.Forest.Size()
	meta.SizeBytes = int64(compressed.Len())
	meta.SavedAt = time.Now()

	tmp, err := os.CreateTemp(s.baseDir, "."+name+"-*.tmp")
	if err != nil {
		return persistErr("create model file", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) } //nolint:errcheck // best-effort removal of temp file

	sf := storedFile{
		Metadata:       meta,
		CompressedData: compressed.Bytes(),
	}
	if err := gob.NewEncoder(tmp).Encode(sf); err != nil {
		_ = tmp.Close() //nolint:errcheck // write already failed
		cleanup()
		return persistErr("write model file", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close() //nolint:errcheck // sync already failed
		cleanup()
		return persistErr("sync model file", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return persistErr("close model file", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		cleanup()
		return persistErr("publish model file", err)
	}

	if current, ok := s.versions[name]; !ok || m.Version > current {
		s.versions[name] = m.Version
	}
	return nil
}

// Load reads a model by name and version. Version 0 loads the latest.
// A missing artifact is models.ErrModelUnavailable; an unreadable or
// corrupt one is a *models.PersistError.
func (s *Store) Load(ctx context.Context, name string, version int) (*predict.Model, *ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if version == 0 {
		var ok bool
		version, ok = s.versions[name]
		if !ok {
			return nil, nil, fmt.Errorf("no stored model %q: %w", name, models.ErrModelUnavailable)
		}
	}

	filename := s.modelPath(name, version)
	persistErr := func(op string, err error) error {
		return &models.PersistError{Op: op, Path: filename, Err: err}
	}

	f, err := os.Open(filename) //nolint:gosec // filename is constructed from trusted name parameter
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, fmt.Errorf("model %s v%d: %w", name, version, models.ErrModelUnavailable)
		}
		return nil, nil, persistErr("open model file", err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return nil, nil, persistErr("read model file", err)
	}

	gzr, err := gzip.NewReader(bytes.NewReader(sf.CompressedData))
	if err != nil {
		return nil, nil, persistErr("decompress model", err)
	}
	defer func() { _ = gzr.Close() }() //nolint:errcheck // error on gzip close after read is not actionable

	rawData, err := io.ReadAll(gzr)
	if err != nil {
		return nil, nil, persistErr("decompress model", err)
	}

	hash := sha256.Sum256(rawData)
	if checksum := hex.EncodeToString(hash[:]); checksum != sf.Metadata.Checksum {
		return nil, nil, persistErr("verify model", fmt.Errorf("checksum mismatch: expected %s, got %s", sf.Metadata.Checksum, checksum))
	}

	var m predict.Model
	if err := gob.NewDecoder(bytes.NewReader(rawData)).Decode(&m); err != nil {
		return nil, nil, persistErr("decode model", err)
	}
	if m.Forest == nil || len(m.Forest.Trees) == 0 {
		return nil, nil, persistErr("decode model", errors.New("artifact holds no trees"))
	}

	return &m, &sf.Metadata, nil
}

// LoadLatest loads the newest version of name.
func (s *Store) LoadLatest(ctx context.Context, name string) (*predict.Model, *ModelMetadata, error) {
	return s.Load(ctx, name, 0)
}

// LatestVersion returns the newest stored version of name.
func (s *Store) LatestVersion(name string) (int, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	version, ok := s.versions[name]
	return version, ok
}

// ListModels returns metadata for every stored version of name, newest first.
func (s *Store) ListModels(ctx context.Context, name string) ([]ModelMetadata, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	found, err := s.listVersions(name)
	if err != nil {
		return nil, &models.PersistError{Op: "list models", Path: s.baseDir, Err: err}
	}
	versions := found[name]
	slices.Sort(versions)
	slices.Reverse(versions)

	out := make([]ModelMetadata, 0, len(versions))
	for _, v := range versions {
		meta, err := s.readMetadata(s.modelPath(name, v))
		if err != nil {
			continue
		}
		out = append(out, meta)
	}
	return out, nil
}

func (s *Store) readMetadata(filename string) (ModelMetadata, error) {
	f, err := os.Open(filename) //nolint:gosec // filename is constructed from trusted name parameter
	if err != nil {
		return ModelMetadata{}, err
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // error on close after read is not actionable

	var sf storedFile
	if err := gob.NewDecoder(f).Decode(&sf); err != nil {
		return ModelMetadata{}, err
	}
	return sf.Metadata, nil
}

// Delete removes one stored version.
func (s *Store) Delete(ctx context.Context, name string, version int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	filename := s.modelPath(name, version)
	if err := os.Remove(filename); err != nil {
		return &models.PersistError{Op: "delete model", Path: filename, Err: err}
	}

	if s.versions[name] != version {
		return nil
	}
	found, err := s.listVersions(name)
	if err != nil {
		return &models.PersistError{Op: "list models", Path: s.baseDir, Err: err}
	}
	if vs := found[name]; len(vs) > 0 {
		s.versions[name] = slices.Max(vs)
	} else {
		delete(s.versions, name)
	}
	return nil
}

// Prune removes old versions of name, keeping the newest keepVersions.
// It returns the number of files removed.
func (s *Store) Prune(ctx context.Context, name string, keepVersions int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if keepVersions < 1 {
		keepVersions = 1
	}

	found, err := s.listVersions(name)
	if err != nil {
		return 0, &models.PersistError{Op: "list models", Path: s.baseDir, Err: err}
	}
	versions := found[name]
	slices.Sort(versions)
	slices.Reverse(versions)

	removed := 0
	for i := keepVersions; i < len(versions); i++ {
		if err := os.Remove(s.modelPath(name, versions[i])); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (s *Store) modelPath(name string, version int) string {
	return filepath.Join(s.baseDir, fmt.Sprintf("%s_v%d%s", name, version, fileSuffix))
}
