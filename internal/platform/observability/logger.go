package observability

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/developer0071/Tech-House-programing/internal/platform/sessionctx"
)

const (
	defaultLogLevel = "info"
	defaultLogSink  = "stderr"
)

// LoggerOptions selects the level and output path for NewLogger.
type LoggerOptions struct {
	Level string
	// Path is a file path or one of "stderr"/"stdout". The interactive shell owns stdout,
	// so the default sink is stderr.
	Path string
}

// NewLogger constructs a zap logger emitting structured JSON.
func NewLogger(opts LoggerOptions) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(opts.Level)))); err != nil || strings.TrimSpace(opts.Level) == "" {
		_ = level.UnmarshalText([]byte(defaultLogLevel))
	}

	sink := strings.TrimSpace(opts.Path)
	if sink == "" {
		sink = defaultLogSink
	}

	encoderCfg := zapcore.EncoderConfig{
		MessageKey: "message",
		TimeKey:    "timestamp",
		LevelKey:   "severity",
		EncodeTime: zapcore.RFC3339NanoTimeEncoder,
		EncodeLevel: func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(strings.ToUpper(level.String()))
		},
		CallerKey:     "caller",
		StacktraceKey: "stacktrace",
	}

	cfg := zap.Config{
		Level:             level,
		Encoding:          "json",
		EncoderConfig:     encoderCfg,
		OutputPaths:       []string{sink},
		ErrorOutputPaths:  []string{"stderr"},
		DisableCaller:     false,
		DisableStacktrace: true,
	}

	return cfg.Build()
}

// WithLogger injects the logger into the provided context.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return sessionctx.WithLogger(ctx, logger)
}

// FromContext retrieves the logger from context, annotated with session fields when present.
func FromContext(ctx context.Context) *zap.Logger {
	logger := sessionctx.Logger(ctx)
	if info, ok := sessionctx.Session(ctx); ok {
		fields := make([]zap.Field, 0, 2)
		if info.SessionID != "" {
			fields = append(fields, zap.String("sessionId", info.SessionID))
		}
		if info.Username != "" {
			fields = append(fields, zap.String("username", SanitizeUsername(info.Username)))
		}
		if len(fields) > 0 {
			logger = logger.With(fields...)
		}
	}
	return logger
}
