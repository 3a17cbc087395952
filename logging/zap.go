package logging

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapLogger adapts a zap.Logger to Logger. Fields become zap.Any fields
// and errors are attached with zap.Error.
type ZapLogger struct {
	logger *zap.Logger
	level  zap.AtomicLevel
}

// NewZapLogger wraps an existing zap logger. Its own core decides which
// levels are enabled; SetLevel only raises the floor.
func NewZapLogger(logger *zap.Logger) *ZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ZapLogger{
		logger: logger,
		level:  zap.NewAtomicLevelAt(zapcore.DebugLevel),
	}
}

// NewZapJSONLogger builds a production JSON logger writing to stderr at level
func NewZapJSONLogger(level Level) (*ZapLogger, error) {
	atomic := zap.NewAtomicLevelAt(toZapLevel(level))

	cfg := zap.NewProductionConfig()
	cfg.Level = atomic
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return &ZapLogger{logger: logger, level: atomic}, nil
}

func toZapLevel(level Level) zapcore.Level {
	switch level {
	case DebugLevel:
		return zapcore.DebugLevel
	case InfoLevel:
		return zapcore.InfoLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case FatalLevel:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

func zapFields(err error, fields ...Fields) []zap.Field {
	merged := mergeFields(nil, fields...)
	out := make([]zap.Field, 0, len(merged)+1)
	for _, key := range sortedKeys(merged) {
		out = append(out, zap.Any(key, merged[key]))
	}
	if err != nil {
		out = append(out, zap.Error(err))
	}
	return out
}

func (z *ZapLogger) write(level Level, err error, msg string, fields ...Fields) {
	zapLevel := toZapLevel(level)
	if !z.level.Enabled(zapLevel) {
		return
	}
	if ce := z.logger.Check(zapLevel, msg); ce != nil {
		ce.Write(zapFields(err, fields...)...)
	}
}

func (z *ZapLogger) Debug(msg string, fields ...Fields) {
	z.write(DebugLevel, nil, msg, fields...)
}

func (z *ZapLogger) Info(msg string, fields ...Fields) {
	z.write(InfoLevel, nil, msg, fields...)
}

func (z *ZapLogger) Warn(msg string, fields ...Fields) {
	z.write(WarnLevel, nil, msg, fields...)
}

func (z *ZapLogger) Error(err error, msg string, fields ...Fields) {
	z.write(ErrorLevel, err, msg, fields...)
}

func (z *ZapLogger) Fatal(err error, msg string, fields ...Fields) {
	z.write(FatalLevel, err, msg, fields...)
}

func (z *ZapLogger) WithFields(fields Fields) Logger {
	return &ZapLogger{
		logger: z.logger.With(zapFields(nil, fields)...),
		level:  z.level,
	}
}

func (z *ZapLogger) WithContext(ctx context.Context) Logger {
	if fields := FieldsFromContext(ctx); len(fields) > 0 {
		return z.WithFields(fields)
	}
	return z
}

func (z *ZapLogger) SetLevel(level Level) {
	z.level.SetLevel(toZapLevel(level))
}

// Sync flushes buffered entries. Errors from syncing a terminal are ignored.
func (z *ZapLogger) Sync() error {
	if err := z.logger.Sync(); err != nil {
		if strings.Contains(err.Error(), "inappropriate ioctl for device") ||
			strings.Contains(err.Error(), "bad file descriptor") ||
			strings.Contains(err.Error(), "invalid argument") {
			return nil
		}
		return err
	}
	return nil
}
