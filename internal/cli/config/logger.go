package config

import (
	"context"
	"log/slog"
	"os"
)

// loggerKey is the context key used for storing the logger.
type loggerKey struct{}

// LoggerKey returns the context key used for storing the logger. This
// allows the commands package to retrieve the logger from context without
// creating an import cycle with the cli package.
func LoggerKey() interface{} {
	return loggerKey{}
}

// NewLogger builds the default handler: text to stderr, level Info unless
// verbose raises it to Debug.
func NewLogger(verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}

// WithLogger attaches logger to ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context, falling back to
// a discarding logger so callers never need a nil check.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
