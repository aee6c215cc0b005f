// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/parkcast/internal/logging"
	"github.com/tomtom215/parkcast/internal/retrain"
)

// RootResponse is the service banner.
type RootResponse struct {
	Status    string   `json:"status"`
	Message   string   `json:"message"`
	Endpoints []string `json:"endpoints"`
}

// HealthStatus reports liveness and model state.
type HealthStatus struct {
	Status         string         `json:"status"`
	ModelLoaded    bool           `json:"model_loaded"`
	ModelVersion   int            `json:"model_version"`
	CorpusRows     int            `json:"corpus_rows"`
	JournalBreaker string         `json:"journal_breaker,omitempty"`
	Retrain        retrain.Status `json:"retrain"`
	Uptime         float64        `json:"uptime_seconds"`
}

// Root returns the service banner with the public endpoints.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &RootResponse{
		Status:  StatusOnline,
		Message: "Parkcast parking availability service",
		Endpoints: []string{
			"POST /predict",
			"POST /update_activity",
			"POST /learn",
			"GET /landmarks",
			"GET /health",
			"GET /metrics",
		},
	})
}

// Health reports model and corpus state.
//
// Status is "healthy" when a model is serving, "degraded" otherwise. Rank
// queries keep working without a model, so the endpoint always answers 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:       "healthy",
		ModelLoaded:  h.model.Loaded(),
		ModelVersion: h.model.Version(),
		Retrain:      h.pipeline.Status(),
		Uptime:       time.Since(h.startTime).Seconds(),
	}
	if !health.ModelLoaded {
		health.Status = "degraded"
	}

	rows, err := h.pipeline.CorpusRows(r.Context())
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Health: corpus row count failed")
		health.Status = "degraded"
	}
	health.CorpusRows = rows

	if h.breaker != nil {
		health.JournalBreaker = h.breaker.State()
		if health.JournalBreaker == "open" {
			health.Status = "degraded"
		}
	}

	respondJSON(w, http.StatusOK, &health)
}
