package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"go.uber.org/zap/zapcore"
)

func TestToZapLevel(t *testing.T) {
	cases := []struct {
		in   string
		want zapcore.Level
	}{
		{DebugLevel, zapcore.DebugLevel},
		{InfoLevel, zapcore.InfoLevel},
		{" WARN ", zapcore.WarnLevel},
		{ErrorLevel, zapcore.ErrorLevel},
		{"bogus", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}
	for _, tc := range cases {
		if got := toZapLevel(tc.in); got != tc.want {
			t.Fatalf("toZapLevel(%q) = %v; want %v", tc.in, got, tc.want)
		}
	}
}

func TestNewWithWriter_JSONLineWithFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, InfoLevel, JSONFormat)

	log.Debugw("hidden")
	log.Infow("upstream_response", "status", 200)
	_ = log.Sync()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected 1 line (debug filtered), got %d: %q", len(lines), buf.String())
	}
	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if entry["msg"] != "upstream_response" || entry["level"] != "INFO" {
		t.Fatalf("unexpected entry: %v", entry)
	}
	if entry["status"] != float64(200) {
		t.Fatalf("status field: got %v", entry["status"])
	}
}

func TestNewWithWriter_Console(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, DebugLevel, ConsoleFormat)
	log.Warnw("audit_append_failed", "err", "disk full")
	_ = log.Sync()

	out := buf.String()
	if !strings.Contains(out, "WARN") || !strings.Contains(out, "audit_append_failed") || !strings.Contains(out, "disk full") {
		t.Fatalf("unexpected console output: %q", out)
	}
}
