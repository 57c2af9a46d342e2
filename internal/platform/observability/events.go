package observability

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/developer0071/Tech-House-programing/internal/platform/sessionctx"
)

// EventLogger adapts zap to the event hook accepted by the service constructors. The
// context logger wins over base so session fields flow into every event.
func EventLogger(base *zap.Logger) func(ctx context.Context, event string, fields map[string]any) {
	if base == nil {
		base = zap.NewNop()
	}
	return func(ctx context.Context, event string, fields map[string]any) {
		logger := base
		if sessionctx.Logger(ctx) != sessionctx.NoopLogger() {
			logger = FromContext(ctx)
		}
		logger.Info(sanitizeString(event, 96), eventFields(fields)...)
	}
}

func eventFields(fields map[string]any) []zap.Field {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]zap.Field, 0, len(keys))
	for _, key := range keys {
		switch value := fields[key].(type) {
		case string:
			out = append(out, zap.String(key, sanitizeString(value, 0)))
		case error:
			out = append(out, zap.NamedError(key, value))
		default:
			out = append(out, zap.Any(key, value))
		}
	}
	return out
}
