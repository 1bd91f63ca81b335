// ABOUTME: Levelled logging on top of the standard log package
// ABOUTME: The TUI owns the terminal, so output is normally redirected to a log file

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
)

// Level orders log severities; messages below the configured level are dropped.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a config string to a Level, defaulting to info.
func ParseLevel(name string) Level {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

var (
	mu     sync.RWMutex
	level            = LevelInfo
	output io.Writer = os.Stderr
)

// SetLevel sets the minimum level that is written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetVerbose enables or disables DEBUG logging.
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelInfo)
}

// IsVerbose reports whether DEBUG messages are written.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return level == LevelDebug
}

// SetOutput sets the output destination for logs; nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()

	if w == nil {
		w = os.Stderr
	}
	output = w
	log.SetOutput(w)
}

// Output returns the current destination.
func Output() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

func logf(l Level, format string, args ...interface{}) {
	mu.RLock()
	enabled := l >= level
	mu.RUnlock()

	if !enabled {
		return
	}
	msg := fmt.Sprintf(format, args...)
	log.Printf("[%s] %s", l, msg)
}

// Debug logs at DEBUG level (only shown when verbose)
func Debug(format string, args ...interface{}) {
	logf(LevelDebug, format, args...)
}

// Info logs at INFO level
func Info(format string, args ...interface{}) {
	logf(LevelInfo, format, args...)
}

// Warn logs at WARN level
func Warn(format string, args ...interface{}) {
	logf(LevelWarn, format, args...)
}

// Error logs at ERROR level
func Error(format string, args ...interface{}) {
	logf(LevelError, format, args...)
}
