// Package logger provides internal logging utilities.
package logger

import (
	"sync"
	"testing"

	"github.com/braintrustdata/overlap-go/logger"
)

// FailTestLogger is a logger that fails tests when the application emits warnings or errors.
// Use this in tests to assert that application code doesn't produce unexpected warnings/errors.
type FailTestLogger struct {
	t *testing.T
}

// NewFailTestLogger creates a new test logger that fails on errors or warnings.
func NewFailTestLogger(t *testing.T) logger.Logger {
	t.Helper()
	return &FailTestLogger{t: t}
}

// Debug is a no-op. Debug logs are expected and don't indicate problems.
func (l *FailTestLogger) Debug(msg string, args ...any) {
	l.t.Helper()
	l.t.Logf("[DEBUG] %s %v", msg, args)
}

// Info is a no-op. Info logs are expected and don't indicate problems.
func (l *FailTestLogger) Info(msg string, args ...any) {
	l.t.Helper()
	l.t.Logf("[INFO] %s %v", msg, args)
}

// Warn fails the test. Application code should not emit warnings during tests.
// Errorf is used rather than Fatalf because warnings may come from worker goroutines.
func (l *FailTestLogger) Warn(msg string, args ...any) {
	l.t.Helper()
	l.t.Errorf("[WARN] %s %v", msg, args)
}

// Error fails the test. Application code should not emit errors during tests.
func (l *FailTestLogger) Error(msg string, args ...any) {
	l.t.Helper()
	l.t.Errorf("[ERROR] %s %v", msg, args)
}

// RecordingLogger keeps every message so tests can assert on expected warnings.
type RecordingLogger struct {
	mu      sync.Mutex
	entries []Entry
}

// Entry is one recorded log call.
type Entry struct {
	Level string
	Msg   string
	Args  []any
}

// NewRecordingLogger creates an empty RecordingLogger.
func NewRecordingLogger() *RecordingLogger {
	return &RecordingLogger{}
}

func (l *RecordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	l.entries = append(l.entries, Entry{Level: level, Msg: msg, Args: args})
	l.mu.Unlock()
}

func (l *RecordingLogger) Debug(msg string, args ...any) { l.add("DEBUG", msg, args) }
func (l *RecordingLogger) Info(msg string, args ...any)  { l.add("INFO", msg, args) }
func (l *RecordingLogger) Warn(msg string, args ...any)  { l.add("WARN", msg, args) }
func (l *RecordingLogger) Error(msg string, args ...any) { l.add("ERROR", msg, args) }

// Entries returns a copy of the recorded entries at the given level.
func (l *RecordingLogger) Entries(level string) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Entry
	for _, e := range l.entries {
		if e.Level == level {
			out = append(out, e)
		}
	}
	return out
}
