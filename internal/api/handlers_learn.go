// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/tomtom215/parkcast/internal/logging"
)

// TimestampLayout formats retrain completion times.
const TimestampLayout = "2006-01-02 15:04:05"

// LearnResponse reports a retrain.
type LearnResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
	RunID      string `json:"run_id,omitempty"`
	Version    int    `json:"model_version,omitempty"`
	Appended   int    `json:"appended,omitempty"`
	CorpusRows int    `json:"corpus_rows,omitempty"`
	Persisted  *bool  `json:"persisted,omitempty"`
}

// Learn triggers a retrain from the live snapshot.
//
// By default the call waits for the run and reports its outcome. With
// ?async=true it returns 202 once the trigger is queued. Concurrent calls
// share one run.
func (h *Handler) Learn(w http.ResponseWriter, r *http.Request) {
	async, _ := strconv.ParseBool(r.URL.Query().Get("async"))

	outcome, err := h.trigger.Trigger()
	if err != nil {
		handleError(w, r, "learn", err)
		return
	}

	if async {
		respondJSON(w, http.StatusAccepted, &LearnResponse{
			Status:    StatusAccepted,
			Message:   "Retrain scheduled",
			Timestamp: time.Now().In(h.config.Location).Format(TimestampLayout),
		})
		return
	}

	ctx := r.Context()
	if h.config.LearnTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.LearnTimeout)
		defer cancel()
	}

	select {
	case <-ctx.Done():
		handleError(w, r, "learn", ctx.Err())
		return
	case out := <-outcome:
		if out.Err != nil {
			handleError(w, r, "learn", out.Err)
			return
		}

		res := out.Result
		logging.Ctx(r.Context()).Info().
			Str("run_id", res.RunID).
			Int("version", res.Version).
			Int("appended", res.Appended).
			Msg("Retrain completed")

		persisted := res.Persisted
		respondJSON(w, http.StatusOK, &LearnResponse{
			Status:     StatusSuccess,
			Message:    "Model retrained using live crowdsourced data points.",
			Timestamp:  res.CompletedAt.In(h.config.Location).Format(TimestampLayout),
			RunID:      res.RunID,
			Version:    res.Version,
			Appended:   res.Appended,
			CorpusRows: res.CorpusRows,
			Persisted:  &persisted,
		})
	}
}
