package siteheader

import (
	"context"
	"log/slog"
)

type ctxKey struct{}

var (
	slogCtxKey = ctxKey{}

	discardLogger = slog.New(slog.DiscardHandler)
)

// logger returns the *slog.Logger stored in ctx by LoggingContext, or a
// logger that discards everything if there isn't one.
func logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(slogCtxKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return discardLogger
}

// LoggingContext returns a copy of ctx that carries logger. Rendering and
// activation log through it; without one, nothing is logged.
func LoggingContext(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, slogCtxKey, logger)
}
