package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelWarn, &buf)
	l.Debug("hidden %d", 1)
	l.Info("hidden")
	l.Warn("raking did not converge after %d iterations", 100)
	l.Error("boom")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "[WARN] raking did not converge after 100 iterations")
	assert.Contains(t, out, "[ERROR] boom")
}

func TestNilLoggerIsSafe(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Warn("x")
		l.Debug("y")
	})
	assert.Equal(t, LevelError, l.Level())
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, LevelDebug, ParseLevel("debug"))
	assert.Equal(t, LevelInfo, ParseLevel(" INFO "))
	assert.Equal(t, LevelWarn, ParseLevel(""))
	assert.Equal(t, "ERROR", LevelError.String())
}
