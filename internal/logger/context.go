package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// RequestIDField is the log field carrying the HTTP request id.
const RequestIDField = "request_id"

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// ContextWithRequest derives a request-scoped logger tagged with requestID
// and stores it in the context. An empty requestID leaves base untagged.
func ContextWithRequest(ctx context.Context, base *zap.Logger, requestID string) (context.Context, *zap.Logger) {
	l := base
	if requestID != "" {
		l = base.With(zap.String(RequestIDField, requestID))
	}
	return ContextWithLogger(ctx, l), l
}

// FromContextOr returns the logger stored in ctx, or fallback when there is none.
func FromContextOr(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	if fallback != nil {
		return fallback
	}
	return zap.NewNop()
}

// FromContext extracts a logger from the context.
// Returns zap.NewNop() if no logger is found.
func FromContext(ctx context.Context) *zap.Logger {
	return FromContextOr(ctx, nil)
}
