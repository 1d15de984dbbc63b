package logging

import (
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestNewLevels(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug": zapcore.DebugLevel,
		"info":  zapcore.InfoLevel,
		"warn":  zapcore.WarnLevel,
		"error": zapcore.ErrorLevel,
		"":      zapcore.InfoLevel,
		"bogus": zapcore.InfoLevel,
	}
	for levelStr, expected := range tests {
		logger := New(levelStr, "json")
		if logger == nil {
			t.Fatalf("expected logger for level %q", levelStr)
		}
		if !logger.Core().Enabled(expected) {
			t.Fatalf("level %q should enable %v", levelStr, expected)
		}
		if expected > zapcore.DebugLevel && logger.Core().Enabled(expected-1) {
			t.Fatalf("level %q should not enable %v", levelStr, expected-1)
		}
	}
}

func TestNewFormats(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		if logger := New("info", format); logger == nil {
			t.Fatalf("expected logger for format %q", format)
		}
	}
}
