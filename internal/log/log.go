// Package log is a thin structured-logging wrapper around log/slog, in the
// shape of go-ethereum's log package: a package-level root logger, leveled
// methods taking alternating key/value pairs, and a Logger interface so
// callers can substitute their own implementation in tests.
package log

import (
	"context"
	"log/slog"
	"os"
)

// Logger is the logging interface used throughout the engine.
type Logger interface {
	Trace(msg string, ctx ...any)
	Debug(msg string, ctx ...any)
	Info(msg string, ctx ...any)
	Warn(msg string, ctx ...any)
	Error(msg string, ctx ...any)
	With(ctx ...any) Logger
}

type slogLogger struct {
	inner *slog.Logger
}

// levelTrace sits below slog.LevelDebug, mirroring go-ethereum's five-level
// scheme (Trace/Debug/Info/Warn/Error) on top of slog's four.
const levelTrace = slog.Level(-8)

func (l *slogLogger) Trace(msg string, ctx ...any) {
	l.inner.Log(context.Background(), levelTrace, msg, ctx...)
}
func (l *slogLogger) Debug(msg string, ctx ...any) { l.inner.Debug(msg, ctx...) }
func (l *slogLogger) Info(msg string, ctx ...any)  { l.inner.Info(msg, ctx...) }
func (l *slogLogger) Warn(msg string, ctx ...any)  { l.inner.Warn(msg, ctx...) }
func (l *slogLogger) Error(msg string, ctx ...any) { l.inner.Error(msg, ctx...) }
func (l *slogLogger) With(ctx ...any) Logger {
	return &slogLogger{inner: l.inner.With(ctx...)}
}

var root Logger = &slogLogger{inner: slog.New(slog.NewTextHandler(os.Stderr, nil))}

// Root returns the default package-level logger.
func Root() Logger { return root }

// SetDefault replaces the default package-level logger, e.g. so tests can
// install a discarding logger.
func SetDefault(l Logger) { root = l }

// New creates a new Logger with the given context attached to every
// subsequent call.
func New(ctx ...any) Logger { return root.With(ctx...) }

// Discard returns a Logger that drops every message, for use in tests and
// tools that don't want log noise.
func Discard() Logger {
	return &slogLogger{inner: slog.New(slog.NewTextHandler(discardWriter{}, &slog.HandlerOptions{Level: slog.LevelError + 1}))}
}

type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }
