// Package context carries the correlation id and the request-scoped
// logger across the delivery and use case layers.
package context

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
)

// ContextKey keeps the package's context values from colliding with
// keys set by other packages.
type ContextKey string

const (
	// KeyRequestID stores the correlation id of the request.
	KeyRequestID ContextKey = "request_id"

	// KeyLogger stores the logger enriched with the correlation id.
	KeyLogger ContextKey = "logger"

	// HeaderXRequestID is the header the correlation id travels in,
	// both inbound and on the response.
	HeaderXRequestID = "X-Request-Id"
)

// SetRequestID records the correlation id on the echo context so route
// handlers can reach it without unwrapping the request.
func SetRequestID(c echo.Context, requestID string) {
	c.Set(string(KeyRequestID), requestID)
}

// WithRequestID attaches the correlation id to a context.Context for
// code below the delivery layer.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, KeyRequestID, requestID)
}

// WithLogger attaches the request-scoped logger to the context.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, KeyLogger, logger)
}

// GetLoggerOrDefault returns the request-scoped logger, falling back to
// the given logger when the context carries none.
func GetLoggerOrDefault(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if logger, ok := ctx.Value(KeyLogger).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return fallback
}
