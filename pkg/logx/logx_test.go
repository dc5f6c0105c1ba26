package logx

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func decodeLines(t *testing.T, b []byte) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSpace(b), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		if err := json.Unmarshal(line, &m); err != nil {
			t.Fatalf("invalid json line %q: %v", line, err)
		}
		out = append(out, m)
	}
	return out
}

func TestWriterLoggerFieldsAndLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, "info").With(String("comp", "bus"))

	log.Debug("hidden")
	log.Info("shown", Int("n", 3), Bool("ok", true))

	lines := decodeLines(t, buf.Bytes())
	if len(lines) != 1 {
		t.Fatalf("lines = %d, want 1", len(lines))
	}
	got := lines[0]
	if got["message"] != "shown" {
		t.Fatalf("message = %v", got["message"])
	}
	if got["comp"] != "bus" {
		t.Fatalf("comp = %v, want bus", got["comp"])
	}
	if got["n"] != float64(3) || got["ok"] != true {
		t.Fatalf("unexpected fields: %v", got)
	}
	caller, _ := got["caller"].(string)
	if !strings.HasPrefix(caller, "logx_test.go:") {
		t.Fatalf("caller = %q, want logx_test.go:<line>", caller)
	}
}

func TestWithDoesNotLeakBetweenChildren(t *testing.T) {
	var buf bytes.Buffer
	base := NewWriter(&buf, "debug")
	a := base.With(String("who", "a"))
	b := base.With(String("who", "b"))

	a.Info("x")
	b.Info("y")

	lines := decodeLines(t, buf.Bytes())
	if len(lines) != 2 || lines[0]["who"] != "a" || lines[1]["who"] != "b" {
		t.Fatalf("unexpected lines: %v", lines)
	}
}

func TestZeroAndNopLoggers(t *testing.T) {
	var zero Logger
	if !zero.IsZero() {
		t.Fatal("zero logger should report IsZero")
	}
	zero.Error("no panic")

	nop := Nop()
	if nop.IsZero() {
		t.Fatal("Nop logger should not be zero")
	}
	nop.Info("discarded")
}

func TestValidLevel(t *testing.T) {
	t.Parallel()
	for _, lvl := range []string{"", "trace", "DEBUG", " info ", "warn", "warning", "error"} {
		if !ValidLevel(lvl) {
			t.Errorf("ValidLevel(%q) = false, want true", lvl)
		}
	}
	for _, lvl := range []string{"loud", "fatal"} {
		if ValidLevel(lvl) {
			t.Errorf("ValidLevel(%q) = true, want false", lvl)
		}
	}
}

func TestServiceFileSinkAndApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.log")
	svc, log := New(Config{Level: "info", File: FileConfig{Enabled: true, Path: path}})
	t.Cleanup(func() { _ = svc.Close() })

	log.Debug("dropped")
	log.Info("kept")

	svc.Apply(Config{Level: "debug", File: FileConfig{Enabled: true, Path: path}})
	if !log.Enabled(LevelDebug) {
		t.Fatal("logger should follow Apply() level change")
	}
	log.Debug("now kept")

	if err := svc.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	lines := decodeLines(t, b)
	if len(lines) != 2 {
		t.Fatalf("lines = %d, want 2 (%s)", len(lines), b)
	}
	if lines[0]["message"] != "kept" || lines[1]["message"] != "now kept" {
		t.Fatalf("unexpected messages: %v", lines)
	}
}
