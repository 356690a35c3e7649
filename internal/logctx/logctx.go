// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package logctx carries a structured logger on a context.Context.
//
// Verbosity is an integer the CLI exposes as -v:
//
//	0 - Quiet: errors and warnings only
//	1 - Progress: one line per round
//	2 - Debug: per-goroutine detail
package logctx

import (
	"context"
	"io"
	"log/slog"
)

const (
	VerbosityQuiet int = iota
	VerbosityProgress
	VerbosityDebug
)

type ctxKey struct{}

// Level maps a verbosity to the lowest slog level that is emitted.
func Level(verbosity int) slog.Level {
	switch {
	case verbosity <= VerbosityQuiet:
		return slog.LevelWarn
	case verbosity == VerbosityProgress:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// New creates a text logger writing to w at the given verbosity.
func New(w io.Writer, verbosity int) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: Level(verbosity)}))
}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	ctx = context.WithValue(ctx, baseKey{}, logger)
	return context.WithValue(ctx, ctxKey{}, logger)
}

// From extracts the logger from ctx, or a logger that discards everything.
func From(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.New(slog.DiscardHandler)
}

// WithTag returns ctx whose logger adds component=tag to every record.
// Nested tags are joined with "/".
func WithTag(ctx context.Context, tag string) context.Context {
	if prev, ok := ctx.Value(tagKey{}).(string); ok && prev != "" {
		tag = prev + "/" + tag
	}
	ctx = context.WithValue(ctx, tagKey{}, tag)
	base, ok := ctx.Value(baseKey{}).(*slog.Logger)
	if !ok {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, base.With("component", tag))
}

type (
	baseKey struct{} // logger without component tag
	tagKey  struct{}
)
