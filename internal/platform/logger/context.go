package logger

import (
	"context"
	"log/slog"
)

// contextKey is an unexported type for context keys defined in this
// package to prevent collisions with keys defined elsewhere.
type contextKey int

// loggerKey is the context key under which the request-scoped logger
// is stored.
const loggerKey contextKey = iota

// WithLogger returns a new context derived from ctx that carries the
// provided logger. Handlers and middleware use this to propagate a
// request-scoped logger (e.g. one enriched with a trace ID) down the
// call chain.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from the context. If no logger is
// present, it returns the process-wide default logger so callers can
// always log safely.
func FromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	return slog.Default()
}

// FromContextOrDefault extracts the logger from the context, falling
// back to the provided default logger when the context does not carry
// one. If defaultLogger is also nil, the process-wide default logger
// is returned.
func FromContextOrDefault(ctx context.Context, defaultLogger *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok && logger != nil {
		return logger
	}
	if defaultLogger != nil {
		return defaultLogger
	}
	return slog.Default()
}
