// Package logging provides a small leveled logger. A nil *Logger is valid and
// discards everything.
package logging

import (
	"io"
	"log"
	"os"
	"strings"
)

// Level is the logging verbosity.
type Level int

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

// ParseLevel maps a level name to a Level, defaulting to LevelWarn.
func ParseLevel(s string) Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ERROR":
		return LevelError
	case "INFO":
		return LevelInfo
	case "DEBUG", "TRACE":
		return LevelDebug
	default:
		return LevelWarn
	}
}

func (l Level) String() string {
	switch l {
	case LevelError:
		return "ERROR"
	case LevelInfo:
		return "INFO"
	case LevelDebug:
		return "DEBUG"
	default:
		return "WARN"
	}
}

// Logger writes "[LEVEL] message" lines.
type Logger struct {
	level Level
	out   *log.Logger
}

// New returns a logger writing to w.
func New(level Level, w io.Writer) *Logger {
	return &Logger{level: level, out: log.New(w, "", log.LstdFlags)}
}

// NewStderr returns a logger writing to stderr.
func NewStderr(level Level) *Logger { return New(level, os.Stderr) }

// Level returns the configured verbosity.
func (l *Logger) Level() Level {
	if l == nil {
		return LevelError
	}
	return l.level
}

func (l *Logger) logf(level Level, format string, args ...any) {
	if l == nil || l.level < level {
		return
	}
	l.out.Printf("["+level.String()+"] "+format, args...)
}

func (l *Logger) Error(format string, args ...any) { l.logf(LevelError, format, args...) }

func (l *Logger) Warn(format string, args ...any) { l.logf(LevelWarn, format, args...) }

func (l *Logger) Info(format string, args ...any) { l.logf(LevelInfo, format, args...) }

func (l *Logger) Debug(format string, args ...any) { l.logf(LevelDebug, format, args...) }
