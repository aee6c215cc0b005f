// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package api

import (
	"context"
	"net/http"

	"github.com/tomtom215/parkcast/internal/logging"
	"github.com/tomtom215/parkcast/internal/models"
	"github.com/tomtom215/parkcast/internal/parking"
	"github.com/tomtom215/parkcast/internal/validation"
)

// ActivityResponse is returned after a park or leave event.
type ActivityResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Name      string `json:"name"`
	Available int    `json:"available"`
}

// LandmarksResponse lists every landmark with its live counter.
type LandmarksResponse struct {
	Status    string                   `json:"status"`
	Landmarks []parking.LandmarkStatus `json:"landmarks"`
}

// PredictInfo answers GET /predict, which browsers and uptime checks hit
// before posting a query.
func (h *Handler) PredictInfo(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &MessageResponse{Message: "Predict endpoint is ready."})
}

// Predict ranks nearby landmarks for a query point.
//
// Request body: {"latitude": 26.14, "longitude": 91.73, "radius_km": 5, "top_k": 3}
// radius_km and top_k are optional. A failed query returns no partial list.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	var req validation.PredictRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, "predict", err)
		return
	}

	q := parking.Query{Lat: *req.Lat, Lng: *req.Lng}
	if req.RadiusKm != nil {
		q.RadiusKm = *req.RadiusKm
	}
	if req.TopK != nil {
		q.TopK = *req.TopK
	}

	ctx := r.Context()
	if h.config.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.QueryTimeout)
		defer cancel()
	}

	spots, err := h.ranker.Rank(ctx, q)
	if err != nil {
		handleError(w, r, "predict", err)
		return
	}
	if spots == nil {
		spots = []models.Spot{}
	}

	respondJSON(w, http.StatusOK, &PredictResponse{Status: StatusSuccess, Spots: spots})
}

// UpdateActivity applies a crowd-reported park or leave event.
//
// Request body: {"name": "City Centre Mall", "action": "park"}
func (h *Handler) UpdateActivity(w http.ResponseWriter, r *http.Request) {
	var req validation.ActivityRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		handleError(w, r, "update_activity", err)
		return
	}

	action, err := models.ParseAction(req.Action)
	if err != nil {
		handleError(w, r, "update_activity", err)
		return
	}

	status, err := h.live.Apply(r.Context(), req.Name, action)
	if err != nil {
		handleError(w, r, "update_activity", err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("landmark", status.Name).
		Str("action", string(action)).
		Int("available", status.Available).
		Msg("Activity recorded")

	respondJSON(w, http.StatusOK, &ActivityResponse{
		Status:    StatusSuccess,
		Message:   "Activity recorded",
		Name:      status.Name,
		Available: status.Available,
	})
}

// Landmarks lists the catalog with live counters, in catalog order.
func (h *Handler) Landmarks(w http.ResponseWriter, r *http.Request) {
	landmarks := h.ranker.Overview()
	if landmarks == nil {
		landmarks = []parking.LandmarkStatus{}
	}
	respondJSON(w, http.StatusOK, &LandmarksResponse{Status: StatusSuccess, Landmarks: landmarks})
}
