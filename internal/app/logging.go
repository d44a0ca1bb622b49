package app

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"
)

// LogLevel represents the severity level of a log message.
type LogLevel int

const (
	// LogLevelDebug is for state transitions of views and requests.
	LogLevelDebug LogLevel = iota
	// LogLevelInfo is for general informational messages.
	LogLevelInfo
	// LogLevelWarn is for local failures the user can recover from.
	LogLevelWarn
	// LogLevelError is for failures that stop a component.
	LogLevelError
)

// ErrUnknownLogLevel is returned by ParseLogLevel.
var ErrUnknownLogLevel = errors.New("unknown log level")

// String returns the string representation of the log level.
func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLogLevel parses a level name in any case. An empty name is Info.
func ParseLogLevel(s string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LogLevelDebug, nil
	case "info", "":
		return LogLevelInfo, nil
	case "warn", "warning":
		return LogLevelWarn, nil
	case "error":
		return LogLevelError, nil
	default:
		return LogLevelInfo, fmt.Errorf("%w: %q", ErrUnknownLogLevel, s)
	}
}

type field struct {
	key   string
	value any
}

// Logger is a leveled logger. Derived loggers share the output and its
// lock.
type Logger struct {
	out    *logOutput
	level  *LogLevel
	prefix string
	fields []field
}

type logOutput struct {
	mu       sync.Mutex
	w        io.Writer
	disabled bool
	now      func() time.Time
}

// LoggerConfig configures the logger.
type LoggerConfig struct {
	// Level is the minimum log level to output.
	Level LogLevel
	// Output is where logs are written. Defaults to os.Stderr.
	Output io.Writer
	// Prefix is prepended to all log messages.
	Prefix string
}

// DefaultLoggerConfig returns the default logger configuration.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:  LogLevelInfo,
		Output: os.Stderr,
		Prefix: "gemview",
	}
}

// NewLogger creates a new logger with the given configuration.
func NewLogger(cfg LoggerConfig) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	level := cfg.Level
	return &Logger{
		out:    &logOutput{w: cfg.Output, now: time.Now},
		level:  &level,
		prefix: cfg.Prefix,
	}
}

// OpenLogFile opens the log file in dir for appending. The terminal is
// owned by the UI while running, so logs go to a file.
func OpenLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, "gemview.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// WithField returns a new logger with the given field added.
func (l *Logger) WithField(key string, value any) *Logger {
	fields := make([]field, 0, len(l.fields)+1)
	fields = append(fields, l.fields...)
	for i, f := range fields {
		if f.key == key {
			fields[i].value = value
			return &Logger{out: l.out, level: l.level, prefix: l.prefix, fields: fields}
		}
	}
	fields = append(fields, field{key, value})
	return &Logger{out: l.out, level: l.level, prefix: l.prefix, fields: fields}
}

// WithFields returns a new logger with the given fields added in key
// order.
func (l *Logger) WithFields(fields map[string]any) *Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := l
	for _, k := range keys {
		out = out.WithField(k, fields[k])
	}
	return out
}

// WithComponent returns a new logger with the component field set.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

// SetLevel sets the minimum log level of l and every logger derived from
// it.
func (l *Logger) SetLevel(level LogLevel) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	*l.level = level
}

// Level returns the minimum log level.
func (l *Logger) Level() LogLevel {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	return *l.level
}

// SetOutput sets the output writer.
func (l *Logger) SetOutput(w io.Writer) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.w = w
}

// Disable disables all logging.
func (l *Logger) Disable() {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.disabled = true
}

// Enable enables logging.
func (l *Logger) Enable() {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()
	l.out.disabled = false
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, args ...any) {
	l.log(LogLevelDebug, msg, args...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, args ...any) {
	l.log(LogLevelInfo, msg, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, args ...any) {
	l.log(LogLevelWarn, msg, args...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, args ...any) {
	l.log(LogLevelError, msg, args...)
}

// log writes a log message if the level is enabled.
func (l *Logger) log(level LogLevel, msg string, args ...any) {
	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	if l.out.disabled || l.out.w == nil || level < *l.level {
		return
	}

	if len(args) > 0 {
		msg = fmt.Sprintf(msg, args...)
	}

	var b strings.Builder
	b.WriteString(l.out.now().Format("2006-01-02T15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	if l.prefix != "" {
		b.WriteString(l.prefix)
		b.WriteString(": ")
	}
	b.WriteString(msg)

	if len(l.fields) > 0 {
		b.WriteString(" {")
		for i, f := range l.fields {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", f.key, f.value)
		}
		b.WriteString("}")
	}
	b.WriteByte('\n')

	_, _ = io.WriteString(l.out.w, b.String())
}

// NullLogger returns a logger that discards all output.
func NullLogger() *Logger {
	l := NewLogger(LoggerConfig{Output: io.Discard})
	l.Disable()
	return l
}

// appLogger is the application-wide logger instance.
var (
	appLogger     *Logger
	appLoggerOnce sync.Once
	appLoggerMu   sync.Mutex
)

// GetLogger returns the application-wide logger, creating a default one
// on first use. Components receive their logger from the Context; this is
// for code that runs before it exists.
func GetLogger() *Logger {
	appLoggerOnce.Do(func() {
		appLoggerMu.Lock()
		defer appLoggerMu.Unlock()
		if appLogger == nil {
			appLogger = NewLogger(DefaultLoggerConfig())
		}
	})
	appLoggerMu.Lock()
	defer appLoggerMu.Unlock()
	return appLogger
}

// SetLogger sets the application-wide logger.
func SetLogger(l *Logger) {
	appLoggerMu.Lock()
	defer appLoggerMu.Unlock()
	appLogger = l
}
