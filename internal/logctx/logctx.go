// Package logctx carries a structured logger through context.Context so
// the engine never touches a package-level logger (spec.md §9: "Global
// state. Avoid.").
package logctx

import (
	"context"
	"os"

	"github.com/chainguard-dev/clog"
	charmlog "github.com/charmbracelet/log"
)

// New builds the root logger for a run, writing to w at the given level.
func New(w *os.File, debug bool) *clog.Logger {
	level := charmlog.InfoLevel
	if debug {
		level = charmlog.DebugLevel
	}
	handler := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	return clog.New(handler)
}

// With attaches logger to ctx for downstream FromContext calls.
func With(ctx context.Context, logger *clog.Logger) context.Context {
	return clog.WithLogger(ctx, logger)
}

// From retrieves the logger carried by ctx, or a no-op fallback if none
// was attached.
func From(ctx context.Context) *clog.Logger {
	return clog.FromContext(ctx)
}

// Niche returns a child logger scoped to one niche's run, the way a
// per-package build task scopes its own log lines.
func Niche(ctx context.Context, name string) *clog.Logger {
	return From(ctx).With("niche", name)
}
