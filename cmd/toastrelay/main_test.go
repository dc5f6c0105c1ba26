package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "toastrelay.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func requireContains(t *testing.T, s, sub string) {
	t.Helper()
	if !strings.Contains(s, sub) {
		t.Fatalf("output missing %q:\n%s", sub, s)
	}
}

const quietYAML = `
logging: { level: error, console: false }
renderers:
  console: { enabled: true, max_visible: 10, color: never }
`

func TestCheckValidConfig(t *testing.T) {
	path := writeConfig(t, quietYAML+`
announcements:
  - { name: standup, schedule: "0 9 * * 1-5", level: info, message: "Standup in 5 minutes" }
`)
	out, err := runCLI(t, "check", "--config", path)
	if err != nil {
		t.Fatalf("check: %v", err)
	}
	requireContains(t, out, "OK")
	requireContains(t, out, "standup")
}

func TestCheckRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown field", quietYAML + "extra: 1\n"},
		{"bad schedule", quietYAML + `
announcements:
  - { name: x, schedule: "whenever", level: info, message: m }
`},
		{"wire type as verb", quietYAML + `
announcements:
  - { name: x, schedule: "@hourly", level: danger, message: m }
`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := runCLI(t, "check", "--config", writeConfig(t, tt.body)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCheckRequiresConfig(t *testing.T) {
	if _, err := runCLI(t, "check"); err == nil {
		t.Fatal("expected error without --config")
	}
}

func TestDemoRendersEveryKind(t *testing.T) {
	path := writeConfig(t, quietYAML)
	out, err := runCLI(t, "demo", "--config", path, "--delay", "300ms")
	if err != nil {
		t.Fatalf("demo: %v", err)
	}
	for _, want := range []string{"Saved", "Sync started", "Disk almost full", "Failed to save", "Custom types pass through unchanged"} {
		requireContains(t, out, want)
	}
	requireContains(t, out, "NOTICE")
}
