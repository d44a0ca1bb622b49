package app

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
	"time"
)

func newTestLogger(level LogLevel) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	l := NewLogger(LoggerConfig{Level: level, Output: &buf, Prefix: "test"})
	l.out.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }
	return l, &buf
}

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		if got := tt.level.String(); got != tt.expected {
			t.Errorf("LogLevel(%d): expected %q, got %q", tt.level, tt.expected, got)
		}
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected LogLevel
		wantErr  bool
	}{
		{"debug", LogLevelDebug, false},
		{"DEBUG", LogLevelDebug, false},
		{"Info", LogLevelInfo, false},
		{"", LogLevelInfo, false},
		{"warning", LogLevelWarn, false},
		{" warn ", LogLevelWarn, false},
		{"error", LogLevelError, false},
		{"verbose", LogLevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLogLevel(tt.input)
			if tt.wantErr != (err != nil) {
				t.Fatalf("unexpected error state: %v", err)
			}
			if err != nil && !errors.Is(err, ErrUnknownLogLevel) {
				t.Errorf("expected ErrUnknownLogLevel, got %v", err)
			}
			if got != tt.expected {
				t.Errorf("expected %s, got %s", tt.expected, got)
			}
		})
	}
}

func TestLogger_Format(t *testing.T) {
	l, buf := newTestLogger(LogLevelInfo)
	l.Info("formatted %s %d", "test", 42)

	want := "2024-05-01T12:30:00.000 [INFO] test: formatted test 42\n"
	if buf.String() != want {
		t.Errorf("expected %q, got %q", want, buf.String())
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	l, buf := newTestLogger(LogLevelWarn)

	l.Debug("debug")
	l.Info("info")
	l.Warn("warn")
	l.Error("error")

	output := buf.String()
	for _, absent := range []string{"[DEBUG]", "[INFO]"} {
		if strings.Contains(output, absent) {
			t.Errorf("expected %s to be filtered out", absent)
		}
	}
	for _, present := range []string{"[WARN]", "[ERROR]"} {
		if !strings.Contains(output, present) {
			t.Errorf("expected %s in output", present)
		}
	}
}

func TestLogger_Fields(t *testing.T) {
	l, buf := newTestLogger(LogLevelInfo)

	l.WithComponent("view").WithFields(map[string]any{
		"tab": "t1",
		"id":  42,
	}).Info("fetch")

	if !strings.HasSuffix(buf.String(), "fetch {component=view, id=42, tab=t1}\n") {
		t.Errorf("unexpected fields: %q", buf.String())
	}

	buf.Reset()
	l.WithField("k", 1).WithField("k", 2).Info("x")
	if !strings.Contains(buf.String(), "{k=2}") {
		t.Errorf("expected the field to be replaced, got %q", buf.String())
	}

	buf.Reset()
	l.Info("plain")
	if strings.Contains(buf.String(), "{") {
		t.Errorf("derived fields leaked into the parent: %q", buf.String())
	}
}

func TestLogger_SetLevelIsShared(t *testing.T) {
	l, buf := newTestLogger(LogLevelError)
	child := l.WithComponent("media")

	child.Info("hidden")
	if buf.Len() != 0 {
		t.Error("expected no output at error level")
	}

	l.SetLevel(LogLevelInfo)
	child.Info("shown")
	if buf.Len() == 0 {
		t.Error("derived logger should follow SetLevel")
	}
	if child.Level() != LogLevelInfo {
		t.Errorf("expected INFO, got %s", child.Level())
	}
}

func TestLogger_SetOutput(t *testing.T) {
	l, buf1 := newTestLogger(LogLevelInfo)
	var buf2 bytes.Buffer

	l.Info("to buf1")
	l.SetOutput(&buf2)
	l.Info("to buf2")

	if !strings.Contains(buf1.String(), "to buf1") || strings.Contains(buf1.String(), "to buf2") {
		t.Errorf("unexpected buf1: %q", buf1.String())
	}
	if !strings.Contains(buf2.String(), "to buf2") {
		t.Errorf("unexpected buf2: %q", buf2.String())
	}
}

func TestLogger_DisableEnable(t *testing.T) {
	l, buf := newTestLogger(LogLevelInfo)

	l.Disable()
	l.Info("should not appear")
	if buf.Len() != 0 {
		t.Error("expected no output when disabled")
	}

	l.Enable()
	l.Info("should appear")
	if buf.Len() == 0 {
		t.Error("expected output when enabled")
	}
}

func TestNullLogger(t *testing.T) {
	l := NullLogger()
	l.Debug("test")
	l.Error("test %d", 1)
	l.WithComponent("x").Warn("test")
}

func TestOpenLogFile(t *testing.T) {
	dir := t.TempDir() + "/logs"
	f, err := OpenLogFile(dir)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	l := NewLogger(LoggerConfig{Level: LogLevelInfo, Output: f})
	l.Info("hello")
	f.Close()

	data, err := os.ReadFile(dir + "/gemview.log")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Errorf("expected the message in the file, got %q", data)
	}
}

func TestGetLogger(t *testing.T) {
	logger := GetLogger()
	if logger == nil {
		t.Fatal("GetLogger() returned nil")
	}
	if logger != GetLogger() {
		t.Error("expected GetLogger() to return same instance")
	}
}

func TestDefaultLoggerConfig(t *testing.T) {
	cfg := DefaultLoggerConfig()

	if cfg.Level != LogLevelInfo {
		t.Errorf("expected default level INFO, got %s", cfg.Level)
	}
	if cfg.Output == nil {
		t.Error("expected default output to be set")
	}
	if cfg.Prefix != "gemview" {
		t.Errorf("expected prefix 'gemview', got '%s'", cfg.Prefix)
	}
}
