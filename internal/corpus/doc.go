// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

// Package corpus stores the historical observations the availability model
// is fitted on.
//
// Two backends implement Store:
//   - CSVStore: a single CSV file, rewritten through a temporary file and
//     an atomic rename on every append
//   - DuckDBStore: a parking_observations table ordered by a sequence
//     column, appended in one transaction
//
// Both apply the same retention rule (keep the newest MaxRows rows) and
// report I/O failures as *models.PersistError.
//
// Generate produces a deterministic synthetic history used to bootstrap a
// fresh deployment.
package corpus
