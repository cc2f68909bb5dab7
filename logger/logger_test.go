package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.opentelemetry.io/otel/trace"
)

func newJSONLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	cfg := &Config{Level: level, Format: FormatJSON}
	return NewWithWriter(cfg, "test-svc", &buf), &buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	line := strings.TrimSpace(strings.Split(buf.String(), "\n")[0])
	if err := json.Unmarshal([]byte(line), &m); err != nil {
		t.Fatalf("invalid JSON log line %q: %v", line, err)
	}
	return m
}

func TestNewDefault(t *testing.T) {
	l := NewDefault("test-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.service != "test-svc" {
		t.Errorf("expected service 'test-svc', got %q", l.service)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	l, buf := newJSONLogger(t, "invalid-level")
	l.Debug("hidden")
	l.Info("shown")
	if strings.Contains(buf.String(), "hidden") {
		t.Error("invalid level should fall back to info")
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Error("expected info message to be written")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "json")

	l := NewFromEnv("env-svc")
	if l == nil {
		t.Fatal("expected non-nil logger")
	}
	if l.GetLogger().GetLevel().String() != "debug" {
		t.Errorf("expected debug level, got %s", l.GetLogger().GetLevel())
	}
}

func TestFieldsAreWritten(t *testing.T) {
	l, buf := newJSONLogger(t, "debug")
	l.WithComponent("process").Info("process exited", Fields(FieldPID, 42, FieldExitCode, 3))

	m := decodeLine(t, buf)
	if m[FieldComponent] != "process" {
		t.Errorf("expected component=process, got %v", m[FieldComponent])
	}
	if m[FieldPID] != float64(42) {
		t.Errorf("expected pid=42, got %v", m[FieldPID])
	}
	if m[FieldExitCode] != float64(3) {
		t.Errorf("expected exit_code=3, got %v", m[FieldExitCode])
	}
	if m["message"] != "process exited" {
		t.Errorf("unexpected message: %v", m["message"])
	}
}

func TestWithFieldsAndError(t *testing.T) {
	l, buf := newJSONLogger(t, "info")
	l.WithFields(map[string]interface{}{"key": "value"}).WithError(os.ErrNotExist).Warn("warned")

	m := decodeLine(t, buf)
	if m["key"] != "value" {
		t.Errorf("expected key=value, got %v", m["key"])
	}
	if m["error"] != os.ErrNotExist.Error() {
		t.Errorf("expected error field, got %v", m["error"])
	}
}

func TestWithContext_AddsSpanIDs(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	if got := l.WithContext(context.Background()); got != l {
		t.Error("context without a span should return the same logger")
	}

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID: trace.TraceID{1, 2, 3},
		SpanID:  trace.SpanID{4, 5, 6},
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)
	l.WithContext(ctx).Info("traced")

	m := decodeLine(t, buf)
	if m[FieldTraceID] != sc.TraceID().String() {
		t.Errorf("expected trace_id %s, got %v", sc.TraceID(), m[FieldTraceID])
	}
	if m[FieldSpanID] != sc.SpanID().String() {
		t.Errorf("expected span_id %s, got %v", sc.SpanID(), m[FieldSpanID])
	}
}

func TestNop(t *testing.T) {
	// Must not panic and must not write anywhere.
	Nop().Error("dropped", Fields("k", "v"))
}

func TestInit(t *testing.T) {
	err := Init(&Config{Level: "info", Format: "json", Output: "stdout"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if GetGlobalLogger() == nil {
		t.Fatal("expected global logger to be set after Init")
	}

	if err := Init(&Config{Level: "loud"}); err == nil {
		t.Error("expected Init to reject an invalid level")
	}
}

func TestOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	l := New(&Config{Level: "info", Format: "json", Output: path}, "file-svc")
	l.Info("to file")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected log file: %v", err)
	}
	if !strings.Contains(string(data), "to file") {
		t.Errorf("expected message in file, got %q", data)
	}
}

func TestSetGlobalLogger(t *testing.T) {
	l := NewDefault("custom")
	SetGlobalLogger(l)
	if GetGlobalLogger() != l {
		t.Error("expected SetGlobalLogger to set the global logger")
	}
}

func TestPackageLevelFunctions(t *testing.T) {
	SetGlobalLogger(Nop())
	// These should not panic
	Debug("debug msg")
	Info("info msg")
	Warn("warn msg")
	Error("error msg")
	WithComponent("x").Info("component msg")
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Level != "info" {
		t.Errorf("expected level 'info', got %q", cfg.Level)
	}
	if cfg.Format != "console" {
		t.Errorf("expected format 'console', got %q", cfg.Format)
	}
	if cfg.Output != "stderr" {
		t.Errorf("expected output 'stderr', got %q", cfg.Output)
	}
	if !cfg.Timestamp {
		t.Error("expected Timestamp to be true")
	}
}

func TestConfigApplyVerbosity(t *testing.T) {
	tests := []struct {
		name    string
		debug   bool
		verbose int
		want    string
	}{
		{"quiet keeps configured level", false, 0, "warn"},
		{"debug flag", true, 0, "debug"},
		{"one verbose", false, 1, "debug"},
		{"debug plus verbose", true, 1, "trace"},
		{"two verbose", false, 2, "trace"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{Level: "warn"}
			cfg.ApplyVerbosity(tc.debug, tc.verbose)
			if cfg.Level != tc.want {
				t.Errorf("expected %q, got %q", tc.want, cfg.Level)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Level: "info", Format: "json", Output: "stdout"}, false},
		{"valid console", Config{Level: "trace", Format: "console", Output: "stderr"}, false},
		{"invalid level", Config{Level: "bad", Format: "json", Output: "stdout"}, true},
		{"invalid format", Config{Level: "info", Format: "xml", Output: "stdout"}, true},
		{"missing output", Config{Level: "info", Format: "json"}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestRegisterAndGet(t *testing.T) {
	l := NewDefault("custom-component")
	Register("my-component", l)
	defer Unregister("my-component")

	if Get("my-component") != l {
		t.Error("expected Get to return the registered logger")
	}
	if Get("unregistered-component") == nil {
		t.Fatal("expected non-nil logger for unregistered component")
	}
}

func TestFields(t *testing.T) {
	m := Fields("op", "spawn", "id", 42, "dangling")
	if len(m) != 2 || m["op"] != "spawn" || m["id"] != 42 {
		t.Errorf("unexpected fields: %v", m)
	}

	m = Fields(1, "non-string key")
	if len(m) != 0 {
		t.Errorf("non-string keys should be skipped, got %v", m)
	}
}

func TestErrorAndDurationFields(t *testing.T) {
	ef := ErrorFields("spawn", os.ErrPermission)
	if ef[FieldOperation] != "spawn" || ef[FieldError] != os.ErrPermission.Error() {
		t.Errorf("unexpected error fields: %v", ef)
	}
	merged := MergeWithError(nil, os.ErrClosed)
	if merged[FieldError] != os.ErrClosed.Error() {
		t.Errorf("unexpected merged fields: %v", merged)
	}
}
