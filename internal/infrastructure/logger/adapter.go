package logger

import (
	"fmt"

	"voice-browser/internal/application/port/output"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ output.LoggerPort = (*LoggerAdapter)(nil)

type LoggerAdapter struct {
	log *zap.SugaredLogger
}

type Config struct {
	Level  string
	Format string
}

func NewLoggerAdapter(cfg Config) (*LoggerAdapter, error) {
	var zcfg zap.Config
	if cfg.Format == "json" {
		zcfg = zap.NewProductionConfig()
	} else {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(parseLevel(cfg.Level))
	// stdout belongs to the conversation
	zcfg.OutputPaths = []string{"stderr"}

	l, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build zap logger: %w", err)
	}
	return &LoggerAdapter{log: l.Sugar()}, nil
}

func NewZapAdapter(l *zap.Logger) *LoggerAdapter {
	return &LoggerAdapter{log: l.Sugar()}
}

func NewNoOpLogger() *LoggerAdapter {
	return NewZapAdapter(zap.NewNop())
}

func (l *LoggerAdapter) Debug(msg string, args ...any) {
	l.log.Debugw(msg, args...)
}

func (l *LoggerAdapter) Info(msg string, args ...any) {
	l.log.Infow(msg, args...)
}

func (l *LoggerAdapter) Warn(msg string, args ...any) {
	l.log.Warnw(msg, args...)
}

func (l *LoggerAdapter) Error(msg string, args ...any) {
	l.log.Errorw(msg, args...)
}

func (l *LoggerAdapter) WithField(key string, value any) output.LoggerPort {
	return &LoggerAdapter{log: l.log.With(key, value)}
}

func (l *LoggerAdapter) WithFields(fields map[string]any) output.LoggerPort {
	args := make([]any, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, k, v)
	}
	return &LoggerAdapter{log: l.log.With(args...)}
}

func (l *LoggerAdapter) Close() error {
	// Sync on stderr fails with EINVAL on some terminals; nothing to recover.
	_ = l.log.Sync()
	return nil
}

func parseLevel(s string) zapcore.Level {
	switch s {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}
