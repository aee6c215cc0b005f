// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package models

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an event names a landmark that is not in the catalog.
	ErrNotFound = errors.New("landmark not found")

	// ErrModelUnavailable is returned when no fitted model is loaded.
	ErrModelUnavailable = errors.New("prediction model unavailable")

	// ErrPersist is returned when the corpus, a model artifact or the live journal
	// cannot be read or written.
	ErrPersist = errors.New("persistence failure")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrRetrainInProgress is returned when a retrain overlaps a running one.
	ErrRetrainInProgress = errors.New("retrain already in progress")

	// ErrEmptyCorpus is returned when a model is fitted on zero rows.
	ErrEmptyCorpus = errors.New("training corpus is empty")
)

// NotFoundError reports an unknown landmark name.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("landmark %q not found", e.Name)
}

// Unwrap returns ErrNotFound.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrValidation.
func (e *ValidationError) Unwrap() error { return ErrValidation }

// PersistError wraps an I/O failure against durable storage.
// Op names the operation ("read corpus", "save model", ...) and Path the target.
type PersistError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *PersistError) Unwrap() error { return e.Err }

// Is reports ErrPersist as a match so callers can test the category.
func (e *PersistError) Is(target error) bool { return target == ErrPersist }
