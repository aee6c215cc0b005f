// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

// Package storage persists fitted availability models.
//
// # Storage Format
//
// Each artifact is a gob-encoded predict.Model, gzip-compressed and wrapped
// with metadata that carries a SHA-256 checksum of the uncompressed
// encoding:
//
//	filename: {name}_v{version}.gob.gz
//
//	structure:
//	  - Metadata (ModelMetadata)
//	  - CompressedData (gzip-compressed gob-encoded predict.Model)
//
// Files are written to a temporary name and renamed into place.
//
// # Usage
//
//	store, err := storage.NewStore("data/models")
//	if err != nil {
//	    return err
//	}
//	err = store.Save(ctx, "parking", model, storage.ModelMetadata{TrainingDurationMS: 840})
//
//	model, meta, err := store.LoadLatest(ctx, "parking")
//	if errors.Is(err, models.ErrModelUnavailable) {
//	    // nothing persisted yet
//	}
//
//	_, err = store.Prune(ctx, "parking", 5)
//
// # Data Integrity
//
// Load decompresses the payload, recomputes the checksum and refuses a
// mismatch with a *models.PersistError. A missing artifact is reported as
// models.ErrModelUnavailable so callers can fall back to fitting.
//
// # Thread Safety
//
// All store operations are safe for concurrent use. Saves and prunes take
// the write lock; loads and listings share the read lock.
package storage
