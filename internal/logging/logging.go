// Package logging provides the structured logger used across the service.
package logging

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin key/value wrapper around a zap SugaredLogger.
type Logger struct {
	s *zap.SugaredLogger
}

// New builds a production JSON logger at the given level.
func New(level string) *Logger {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))

	z, err := cfg.Build()
	if err != nil {
		z, _ = zap.NewProduction()
	}

	return &Logger{s: z.Sugar()}
}

// Nop returns a logger that discards everything.
func Nop() *Logger {
	return &Logger{s: zap.NewNop().Sugar()}
}

// With returns a child logger carrying the given key/value pairs.
func (l *Logger) With(keyvals ...any) *Logger {
	return &Logger{s: l.s.With(keyvals...)}
}

func (l *Logger) Debug(msg string, keyvals ...any) {
	l.s.Debugw(msg, keyvals...)
}

func (l *Logger) Info(msg string, keyvals ...any) {
	l.s.Infow(msg, keyvals...)
}

func (l *Logger) Warn(msg string, keyvals ...any) {
	l.s.Warnw(msg, keyvals...)
}

func (l *Logger) Error(msg string, keyvals ...any) {
	l.s.Errorw(msg, keyvals...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.s.Sync()
}

// ValidLevel reports whether level names a level ParseLevel understands.
func ValidLevel(level string) bool {
	switch strings.ToLower(level) {
	case "", "debug", "info", "warn", "warning", "error":
		return true
	}
	return false
}

// ParseLevel maps a level name to a zap level, defaulting to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
