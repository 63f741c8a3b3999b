// Package logger holds the structured logger shared by every engine package.
//
// By default the engine produces no log output. Binaries call SetLogger once
// during startup to route engine diagnostics to their own slog handler.
//
// Log levels used by the engine:
//   - [slog.LevelDebug]: lifecycle transitions (activation, subscription handles, cadence changes)
//   - [slog.LevelInfo]: profiler and study summaries
//   - [slog.LevelWarn]: recoverable degradation (pass-through post-process stage)
//   - [slog.LevelError]: missing bindings that disable a subsystem
package logger

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// loggerPtr stores the active logger. Accessed atomically so SetLogger can run
// concurrently with logging from study workers.
var loggerPtr atomic.Pointer[slog.Logger]

func init() {
	loggerPtr.Store(slog.New(nopHandler{}))
}

// SetLogger configures the logger used by all engine packages.
// Pass nil to restore the default silent behavior.
//
// Parameters:
//   - l: the logger to install, or nil
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	loggerPtr.Store(l)
}

// Logger returns the current engine logger.
//
// Returns:
//   - *slog.Logger: the active logger, never nil
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// With returns the current engine logger annotated with a component attribute.
//
// Parameters:
//   - component: the subsystem name attached to every record
//
// Returns:
//   - *slog.Logger: a child logger
func With(component string) *slog.Logger {
	return Logger().With(slog.String("component", component))
}
