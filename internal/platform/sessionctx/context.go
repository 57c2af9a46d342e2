package sessionctx

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	loggerContextKey  contextKey = "github.com/developer0071/Tech-House-programing/internal/platform/sessionctx/logger"
	sessionContextKey contextKey = "github.com/developer0071/Tech-House-programing/internal/platform/sessionctx/session"
)

var noopLogger = zap.NewNop()

// Info captures metadata about the interactive session driving a call.
type Info struct {
	SessionID string
	Username  string
	Guest     bool
}

// WithLogger stores the logger in context for downstream consumers.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if logger == nil {
		logger = noopLogger
	}
	return context.WithValue(ctx, loggerContextKey, logger)
}

// Logger retrieves the zap logger from context or returns a no-op logger.
func Logger(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return noopLogger
	}
	if logger, ok := ctx.Value(loggerContextKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return noopLogger
}

// NoopLogger exposes the shared noop logger instance used across the package.
func NoopLogger() *zap.Logger { return noopLogger }

// WithSession stores the session metadata on the context.
func WithSession(ctx context.Context, info Info) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, sessionContextKey, info)
}

// Session retrieves the session metadata from context when available.
func Session(ctx context.Context) (Info, bool) {
	if ctx == nil {
		return Info{}, false
	}
	info, ok := ctx.Value(sessionContextKey).(Info)
	return info, ok
}

// Username returns the signed-in username carried by ctx, or "" for guests.
func Username(ctx context.Context) string {
	info, ok := Session(ctx)
	if !ok {
		return ""
	}
	return info.Username
}
