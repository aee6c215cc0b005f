// Parkcast - Crowd-Sourced Parking Availability Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/parkcast

package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSlogToZerologLevel(t *testing.T) {
	tests := []struct {
		name  string
		level slog.Level
		want  zerolog.Level
	}{
		{"below debug", slog.LevelDebug - 4, zerolog.TraceLevel},
		{"debug", slog.LevelDebug, zerolog.DebugLevel},
		{"info", slog.LevelInfo, zerolog.InfoLevel},
		{"between info and warn", slog.LevelInfo + 2, zerolog.InfoLevel},
		{"warn", slog.LevelWarn, zerolog.WarnLevel},
		{"error", slog.LevelError, zerolog.ErrorLevel},
		{"above error", slog.LevelError + 4, zerolog.ErrorLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := slogToZerologLevel(tt.level); got != tt.want {
				t.Errorf("slogToZerologLevel(%v) = %v, want %v", tt.level, got, tt.want)
			}
		})
	}
}

func TestSlogHandler_Enabled(t *testing.T) {
	h := NewSlogHandler(zerolog.New(nil).Level(zerolog.WarnLevel))

	if h.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("Enabled(info) = true on a warn logger")
	}
	if !h.Enabled(context.Background(), slog.LevelError) {
		t.Error("Enabled(error) = false on a warn logger")
	}
}

func TestSlogHandler_WithGroupEmpty(t *testing.T) {
	h := NewSlogHandler(zerolog.Nop())
	if got := h.WithGroup(""); got != h {
		t.Error("WithGroup(\"\") should return the same handler")
	}
}

func TestSlogHandler_AttrsBeforeGroupKeepKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandler(NewTestLogger(&buf))).
		With("tree", "parkcast").
		WithGroup("svc").
		With("name", "retrain")

	logger.Info("started", "ok", true)

	out := buf.String()
	for _, want := range []string{`"tree":"parkcast"`, `"svc.name":"retrain"`, `"svc.ok":true`, `"message":"started"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %s: %s", want, out)
		}
	}
}
