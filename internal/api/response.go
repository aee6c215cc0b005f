// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/parkcast/internal/logging"
)

// Response status values. The map front-end matches on these exact strings.
const (
	StatusSuccess  = "Success"
	StatusError    = "Error"
	StatusAccepted = "Accepted"
	StatusOnline   = "Online"
)

// Error codes for API responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeValidationFailed   = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeMethodNotAllowed   = "METHOD_NOT_ALLOWED"
	ErrCodeRetrainInProgress  = "RETRAIN_IN_PROGRESS"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodePersistFailed      = "PERSIST_ERROR"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeModelUnavailable   = "MODEL_UNAVAILABLE"
	ErrCodeTimeout            = "TIMEOUT"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status    string      `json:"status"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
	Details   interface{} `json:"details,omitempty"`
}

// PredictResponse is the body of a successful rank query.
type PredictResponse struct {
	Status string      `json:"status"`
	Spots  interface{} `json:"spots"`
}

// MessageResponse carries a status and a human-readable message.
type MessageResponse struct {
	Status  string `json:"status,omitempty"`
	Message string `json:"message"`
}

// respondJSON writes data as JSON with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

// writeError writes the standard error body, tagged with the request ID.
func writeError(w http.ResponseWriter, r *http.Request, statusCode int, code, message string, details interface{}) {
	respondJSON(w, statusCode, &ErrorResponse{
		Status:    StatusError,
		Code:      code,
		Message:   message,
		RequestID: logging.RequestIDFromContext(r.Context()),
		Details:   details,
	})
}
