// Package logger provides the logging interface used throughout overlap-go
// and its default zap-backed implementation.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the interface for library logging.
// Compatible with slog, zap, logrus, and other structured loggers.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// zapLogger adapts a zap SugaredLogger to Logger.
type zapLogger struct {
	s *zap.SugaredLogger
}

// NewDefaultLogger creates a console logger writing to stderr.
// Debug logging is enabled if OVERLAP_DEBUG=true
func NewDefaultLogger() Logger {
	level := zapcore.InfoLevel
	if strings.ToLower(os.Getenv("OVERLAP_DEBUG")) == "true" {
		level = zapcore.DebugLevel
	}
	return newConsoleLogger(level)
}

func newConsoleLogger(level zapcore.Level) Logger {
	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		zap.NewAtomicLevelAt(level),
	)
	return FromZap(zap.New(core).Named("overlap"))
}

// FromZap wraps an existing zap logger.
func FromZap(l *zap.Logger) Logger {
	if l == nil {
		return Discard()
	}
	return &zapLogger{s: l.Sugar()}
}

func (l *zapLogger) Debug(msg string, args ...any) {
	l.s.Debugw(msg, args...)
}

func (l *zapLogger) Info(msg string, args ...any) {
	l.s.Infow(msg, args...)
}

func (l *zapLogger) Warn(msg string, args ...any) {
	l.s.Warnw(msg, args...)
}

func (l *zapLogger) Error(msg string, args ...any) {
	l.s.Errorw(msg, args...)
}

// discardLogger is a logger that discards all log messages.
type discardLogger struct{}

// Discard returns a logger that discards all log messages.
// Useful for testing or when logging is not desired.
func Discard() Logger {
	return &discardLogger{}
}

// Debug discards the message.
func (l *discardLogger) Debug(msg string, args ...any) {}

// Info discards the message.
func (l *discardLogger) Info(msg string, args ...any) {}

// Warn discards the message.
func (l *discardLogger) Warn(msg string, args ...any) {}

// Error discards the message.
func (l *discardLogger) Error(msg string, args ...any) {}
