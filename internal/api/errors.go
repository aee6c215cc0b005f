// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/parkcast/internal/logging"
	"github.com/tomtom215/parkcast/internal/models"
	"github.com/tomtom215/parkcast/internal/supervisor/services"
	"github.com/tomtom215/parkcast/internal/validation"
)

// errorMapping is the HTTP rendering of an error category.
type errorMapping struct {
	status  int
	code    string
	message string
}

// classifyError maps domain errors to status codes. The message is empty
// when err's own text is safe to return to clients.
func classifyError(err error) errorMapping {
	var notFound *models.NotFoundError
	switch {
	case errors.As(err, &notFound):
		return errorMapping{http.StatusNotFound, ErrCodeNotFound, ""}
	case errors.Is(err, models.ErrValidation):
		return errorMapping{http.StatusBadRequest, ErrCodeValidationFailed, ""}
	case errors.Is(err, models.ErrRetrainInProgress):
		return errorMapping{http.StatusConflict, ErrCodeRetrainInProgress, "A retrain is already running"}
	case errors.Is(err, services.ErrTriggerThrottled):
		return errorMapping{http.StatusTooManyRequests, ErrCodeTooManyRequests, "Retrain requested too soon, try again later"}
	case errors.Is(err, models.ErrModelUnavailable):
		return errorMapping{http.StatusServiceUnavailable, ErrCodeModelUnavailable, "Prediction model is not available"}
	case errors.Is(err, models.ErrEmptyCorpus):
		return errorMapping{http.StatusServiceUnavailable, ErrCodeModelUnavailable, "Training corpus is empty"}
	case errors.Is(err, context.DeadlineExceeded):
		return errorMapping{http.StatusServiceUnavailable, ErrCodeTimeout, "Operation timed out"}
	case errors.Is(err, models.ErrPersist):
		return errorMapping{http.StatusInternalServerError, ErrCodePersistFailed, "Failed to persist state"}
	default:
		return errorMapping{http.StatusInternalServerError, ErrCodeInternalError, "Internal server error"}
	}
}

// handleError logs err and writes the mapped error response. Server-side
// failures are logged at error level, client mistakes at debug.
func handleError(w http.ResponseWriter, r *http.Request, op string, err error) {
	var reqErr *validation.RequestValidationError
	if errors.As(err, &reqErr) {
		apiErr := reqErr.ToAPIError()
		writeError(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
		return
	}

	m := classifyError(err)
	message := m.message
	if message == "" {
		message = err.Error()
	}

	event := logging.Ctx(r.Context()).Debug()
	if m.status >= http.StatusInternalServerError {
		event = logging.Ctx(r.Context()).Error()
	}
	event.Err(err).Str("op", op).Int("status", m.status).Msg("Request failed")

	writeError(w, r, m.status, m.code, message, nil)
}
