// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tomtom215/parkcast/internal/logging"
)

func TestRequestID_GeneratesNewID(t *testing.T) {
	var capturedID string
	handler := func(w http.ResponseWriter, r *http.Request) {
		capturedID = GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}

	req := httptest.NewRequest(http.MethodGet, "/predict", nil)
	rec := httptest.NewRecorder()
	RequestID(handler)(rec, req)

	responseID := rec.Header().Get(RequestIDHeader)
	if _, err := uuid.Parse(responseID); err != nil {
		t.Errorf("response %s is not a valid UUID: %v", RequestIDHeader, err)
	}
	if capturedID != responseID {
		t.Errorf("context ID %q does not match response header %q", capturedID, responseID)
	}
}

func TestRequestID_UpstreamHeader(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		wantKeep bool
	}{
		{"uuid from proxy", "6f1c1e0a-0000-4000-8000-000000000001", true},
		{"opaque token", "req-abc123", true},
		{"empty", "", false},
		{"contains space", "bad id", false},
		{"contains newline", "bad\nid", false},
		{"too long", strings.Repeat("a", maxRequestIDLen+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var capturedID string
			handler := func(w http.ResponseWriter, r *http.Request) {
				capturedID = GetRequestID(r.Context())
			}

			req := httptest.NewRequest(http.MethodPost, "/update_activity", nil)
			if tt.header != "" {
				req.Header.Set(RequestIDHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			RequestID(handler)(rec, req)

			got := rec.Header().Get(RequestIDHeader)
			if tt.wantKeep && got != tt.header {
				t.Errorf("header = %q, want upstream %q", got, tt.header)
			}
			if !tt.wantKeep {
				if got == tt.header {
					t.Errorf("invalid upstream ID %q was kept", tt.header)
				}
				if _, err := uuid.Parse(got); err != nil {
					t.Errorf("replacement ID %q is not a UUID", got)
				}
			}
			if capturedID != got {
				t.Errorf("context ID %q does not match header %q", capturedID, got)
			}
		})
	}
}

func TestRequestID_PropagatesToLoggingContext(t *testing.T) {
	var fromLogging string
	handler := func(w http.ResponseWriter, r *http.Request) {
		fromLogging = logging.RequestIDFromContext(r.Context())
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "trace-1")
	RequestID(handler)(httptest.NewRecorder(), req)

	if fromLogging != "trace-1" {
		t.Errorf("logging request ID = %q, want trace-1", fromLogging)
	}
}

func TestGetRequestID_WithoutID(t *testing.T) {
	if got := GetRequestID(context.Background()); got != "" {
		t.Errorf("GetRequestID() = %q, want empty", got)
	}
}

func TestRequestID_UniquePerRequest(t *testing.T) {
	seen := make(map[string]bool)
	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {})

	for i := 0; i < 100; i++ {
		rec := httptest.NewRecorder()
		handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		id := rec.Header().Get(RequestIDHeader)
		if seen[id] {
			t.Fatalf("duplicate request ID %q", id)
		}
		seen[id] = true
	}
}

func BenchmarkRequestID(b *testing.B) {
	handler := RequestID(func(w http.ResponseWriter, r *http.Request) {})
	req := httptest.NewRequest(http.MethodGet, "/predict", nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		handler(httptest.NewRecorder(), req)
	}
}
