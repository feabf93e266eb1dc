// Pantry Partner Admin Dashboard
// Copyright 2026 Pantry Partner contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/pantrypartner/dashboard

package logging

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSlogHandlerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	logger.Info("info line")
	logger.Warn("warn line")
	logger.Error("error line")

	out := buf.String()
	for _, want := range []string{
		`"level":"info"`, `"level":"warn"`, `"level":"error"`,
		"info line", "warn line", "error line",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogHandlerAttrs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	logger.Info("msg",
		slog.String("service", "poll-layer"),
		slog.Int("count", 3),
		slog.Bool("ok", true),
	)

	out := buf.String()
	for _, want := range []string{`"service":"poll-layer"`, `"count":3`, `"ok":true`} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %s", want, out)
		}
	}
}

func TestSlogHandlerWithAttrs(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))
	child := base.With(slog.String("supervisor", "pantrydash"))

	child.Info("supervised")

	if !strings.Contains(buf.String(), `"supervisor":"pantrydash"`) {
		t.Errorf("output = %s", buf.String())
	}
}

func TestSlogHandlerWithGroup(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(NewSlogHandlerWithLogger(zerolog.New(&buf)))

	logger.WithGroup("tree").Info("msg", slog.String("name", "web-layer"))

	if !strings.Contains(buf.String(), `"tree.name":"web-layer"`) {
		t.Errorf("output = %s", buf.String())
	}
}

func TestSlogHandlerEnabled(t *testing.T) {
	handler := NewSlogHandlerWithLogger(zerolog.New(io.Discard).Level(zerolog.WarnLevel))

	if handler.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info should be disabled at warn level")
	}
	if !handler.Enabled(context.Background(), slog.LevelError) {
		t.Error("error should be enabled at warn level")
	}
}
