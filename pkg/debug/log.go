// Package debug holds development aids for the oscillator: a leveled
// logger gated behind the WTOSC_DEBUG environment variable, buffer
// analysis for catching NaNs and clipping in rendered audio, and a
// render-load tracker for realtime output. Nothing here belongs on the
// audio path; buffers are inspected and events logged from control
// goroutines only.
package debug

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Level is the severity of a log message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelOff disables all output.
	LevelOff
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

// Logger writes timestamped, leveled messages. Safe for concurrent use.
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	prefix string
}

// New creates a logger writing to out.
func New(out io.Writer, prefix string) *Logger {
	return &Logger{out: out, level: LevelInfo, prefix: prefix}
}

// NewFileLogger creates a logger appending to the named file, creating
// parent directories as needed.
func NewFileLogger(path, prefix string) (*Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return New(f, prefix), nil
}

// SetLevel sets the minimum level that gets written.
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// SetOutput redirects the logger.
func (l *Logger) SetOutput(out io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = out
}

func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if level < l.level || l.level == LevelOff {
		return
	}
	var sb strings.Builder
	sb.WriteString(time.Now().Format("2006-01-02 15:04:05.000 "))
	sb.WriteString(fmt.Sprintf("[%s] ", level))
	if l.prefix != "" {
		sb.WriteString(fmt.Sprintf("[%s] ", l.prefix))
	}
	msg := fmt.Sprintf(format, args...)
	sb.WriteString(msg)
	if !strings.HasSuffix(msg, "\n") {
		sb.WriteByte('\n')
	}
	l.out.Write([]byte(sb.String()))
}

// Debug logs a debug message.
func (l *Logger) Debug(format string, args ...interface{}) { l.log(LevelDebug, format, args...) }

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) { l.log(LevelInfo, format, args...) }

// Warn logs a warning.
func (l *Logger) Warn(format string, args ...interface{}) { l.log(LevelWarn, format, args...) }

// Error logs an error.
func (l *Logger) Error(format string, args ...interface{}) { l.log(LevelError, format, args...) }

var defaultLogger *Logger

// The default logger stays off unless WTOSC_DEBUG is set: "1" or
// "stderr" logs to stderr, anything else is taken as a file path.
func init() {
	defaultLogger = New(io.Discard, "wtosc")
	defaultLogger.SetLevel(LevelOff)
	switch v := os.Getenv("WTOSC_DEBUG"); v {
	case "":
	case "1", "stderr":
		defaultLogger.SetOutput(os.Stderr)
		defaultLogger.SetLevel(LevelDebug)
	default:
		if fl, err := NewFileLogger(v, "wtosc"); err == nil {
			defaultLogger = fl
			defaultLogger.SetLevel(LevelDebug)
		} else {
			defaultLogger.SetOutput(os.Stderr)
			defaultLogger.SetLevel(LevelDebug)
			defaultLogger.Error("falling back to stderr: %v", err)
		}
	}
}

// Default returns the process-wide logger.
func Default() *Logger { return defaultLogger }

// SetLevel sets the minimum level on the default logger.
func SetLevel(level Level) { defaultLogger.SetLevel(level) }

// SetOutput redirects the default logger.
func SetOutput(out io.Writer) { defaultLogger.SetOutput(out) }

// Debug logs a debug message on the default logger.
func Debug(format string, args ...interface{}) { defaultLogger.Debug(format, args...) }

// Info logs an informational message on the default logger.
func Info(format string, args ...interface{}) { defaultLogger.Info(format, args...) }

// Warn logs a warning on the default logger.
func Warn(format string, args ...interface{}) { defaultLogger.Warn(format, args...) }

// Error logs an error on the default logger.
func Error(format string, args ...interface{}) { defaultLogger.Error(format, args...) }
