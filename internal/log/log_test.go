package log

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)
	original := Logger()
	ReplaceLogger(slog.New(newHandler(buf)))
	t.Cleanup(func() {
		ReplaceLogger(original)
	})
	return buf
}

func TestInfoProducesLogfmtWithTimestamp(t *testing.T) {
	buf := captureOutput(t)

	Info(context.Background(), "catalogue", "products", 12)

	line := strings.TrimSpace(buf.String())
	if line == "" {
		t.Fatal("expected log output, got empty string")
	}
	for _, field := range []string{"ts=", "level=info", "msg=catalogue", "products=12"} {
		if !strings.Contains(line, field) {
			t.Fatalf("expected %q in log line, got %q", field, line)
		}
	}
}

func TestWarnLevelIsEmitted(t *testing.T) {
	buf := captureOutput(t)

	Warn(context.Background(), "degraded", "reason", "cycle")

	if line := strings.TrimSpace(buf.String()); !strings.Contains(line, "level=warn") {
		t.Fatalf("expected warn level in log line, got %q", line)
	}
}

func TestSetLevelFiltersLowerLevels(t *testing.T) {
	buf := captureOutput(t)

	if err := SetLevel("error"); err != nil {
		t.Fatalf("SetLevel(error) returned error: %v", err)
	}
	t.Cleanup(func() {
		if err := SetLevel("info"); err != nil {
			t.Fatalf("restore level: %v", err)
		}
	})

	Debug(context.Background(), "hidden")
	Info(context.Background(), "hidden")
	if got := buf.String(); got != "" {
		t.Fatalf("expected suppressed output, got %q", got)
	}

	Error(context.Background(), "visible")
	if got := buf.String(); !strings.Contains(got, "msg=visible") {
		t.Fatalf("expected error output, got %q", got)
	}
}

func TestSetLevelRejectsUnknownValue(t *testing.T) {
	if err := SetLevel("verbose"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}

func TestReplaceLoggerPanicsOnNil(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic when replacing with nil logger")
		}
	}()
	ReplaceLogger(nil)
}

func TestNilContextIsTolerated(t *testing.T) {
	buf := captureOutput(t)

	Info(nil, "survives") //nolint:staticcheck

	if line := strings.TrimSpace(buf.String()); !strings.Contains(line, "msg=survives") {
		t.Fatalf("expected log output with nil context, got %q", line)
	}
}
