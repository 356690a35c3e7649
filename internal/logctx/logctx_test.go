// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package logctx

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestLevel(t *testing.T) {
	tests := []struct {
		verbosity int
		want      slog.Level
	}{
		{-1, slog.LevelWarn},
		{VerbosityQuiet, slog.LevelWarn},
		{VerbosityProgress, slog.LevelInfo},
		{VerbosityDebug, slog.LevelDebug},
		{9, slog.LevelDebug},
	}
	for _, tt := range tests {
		if got := Level(tt.verbosity); got != tt.want {
			t.Errorf("Level(%d): got %v, want %v", tt.verbosity, got, tt.want)
		}
	}
}

func TestVerbosityFilter(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, VerbosityProgress))

	From(ctx).Debug("hidden")
	From(ctx).Info("shown", "round", 1)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug record emitted at progress verbosity: %q", out)
	}
	if !strings.Contains(out, "msg=shown") || !strings.Contains(out, "round=1") {
		t.Fatalf("info record missing: %q", out)
	}
}

func TestFromWithoutLogger(t *testing.T) {
	logger := From(context.Background())
	if logger == nil {
		t.Fatal("From: got nil logger")
	}
	logger.Error("discarded")
}

func TestWithTag(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, VerbosityDebug))
	ctx = WithTag(ctx, "harness")
	ctx = WithTag(ctx, "producer")

	From(ctx).Debug("started")

	out := buf.String()
	if !strings.Contains(out, "component=harness/producer") {
		t.Fatalf("missing nested tag: %q", out)
	}
	if strings.Count(out, "component=") != 1 {
		t.Fatalf("component repeated: %q", out)
	}
}

func TestWithTagWithoutLogger(t *testing.T) {
	ctx := WithTag(context.Background(), "x")
	From(ctx).Info("discarded")
}
