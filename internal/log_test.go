package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"ERROR":  LogLevelError,
		"warn":   LogLevelWarn,
		"INFO":   LogLevelInfo,
		" debug": LogLevelDebug,
		"TRACE":  LogLevelTrace,
		"":       LogLevelInfo,
		"loud":   LogLevelInfo,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLogLevel(in), "input %q", in)
	}
}

func TestNopLogger_DoesNotPanic(t *testing.T) {
	l := NewNopLogger()
	l.Error("[Test] %d", 1)
	l.Warn("[Test] %s", "w")
	l.Info("[Test] info")
	l.Debug("[Test] debug")
	l.Trace("[Test] trace")
	assert.Equal(t, LogLevelError, l.level)
}

func TestNewLogger_KeepsLevel(t *testing.T) {
	l := NewLogger(LogLevelDebug)
	assert.Equal(t, LogLevelDebug, l.level)
}
