// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/parkcast/internal/models"
	"github.com/tomtom215/parkcast/internal/validation"
)

// decodeJSON reads a bounded JSON body into dst and validates it.
// Malformed bodies surface as *models.ValidationError, failed validation
// rules as *validation.RequestValidationError.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxBodyBytes)

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			return &models.ValidationError{Field: "body", Reason: "request body is empty"}
		case errors.As(err, &maxErr):
			return &models.ValidationError{Field: "body", Reason: fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)}
		default:
			return &models.ValidationError{Field: "body", Reason: "invalid JSON: " + err.Error()}
		}
	}

	if verr := validation.ValidateStruct(dst); verr != nil {
		return verr
	}
	return nil
}
