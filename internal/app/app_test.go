package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"toastrelay/internal/config"
	"toastrelay/internal/toast"
)

// syncBuffer is written by the renderer goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func quietConfig() *config.Config {
	cfg := config.Default()
	cfg.Logging.Console = false
	cfg.Logging.Level = "error"
	cfg.Renderers.Console.Color = "never"
	return cfg
}

func TestAppRendersNotifierToasts(t *testing.T) {
	out := &syncBuffer{}
	a, err := New("", WithConfig(quietConfig()), WithConsoleOutput(out))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := a.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}

	waitFor(t, func() bool { return a.Bus().Subscribers(toast.Topic) == 1 })
	a.Notifier().Success("Saved")
	a.Notifier().Error("Failed to save")

	waitFor(t, func() bool {
		s := out.String()
		return strings.Contains(s, "Saved") && strings.Contains(s, "Failed to save")
	})

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer stopCancel()
	if err := a.Stop(stopCtx); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if n := a.Bus().Subscribers(toast.Topic); n != 0 {
		t.Fatalf("subscribers after Stop = %d, want 0", n)
	}
}

func TestAppExtraSubscriberSeesWirePayload(t *testing.T) {
	cfg := quietConfig()
	cfg.Renderers.Console.Enabled = false
	a, err := New("", WithConfig(cfg))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var got []toast.Message
	a.Bus().Subscribe(toast.Topic, func(p any) { got = append(got, p.(toast.Message)) })
	a.Notifier().Error("boom")

	if len(got) != 1 || got[0].Type != toast.Danger || got[0].Message != "boom" || !got[0].Options.IsZero() {
		t.Fatalf("got %+v", got)
	}
}

func TestNewLoadsYAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "toastrelay.yaml")
	data := `
logging: { level: error, console: false }
toast: { default_duration: 2s, default_dismissible: false }
renderers:
  console: { enabled: true, max_visible: 2, color: never }
announcements:
  - { name: standup, schedule: "0 9 * * 1-5", level: info, message: "Standup" }
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	a, err := New(path, WithConsoleOutput(&syncBuffer{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a.cfgm == nil || a.console == nil {
		t.Fatal("expected config manager and console renderer")
	}
	def, err := mapRenderDefaults(a.cfg)
	if err != nil {
		t.Fatal(err)
	}
	if def.Duration != 2*time.Second || def.Dismissible {
		t.Fatalf("defaults = %+v", def)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"bad level", func(c *config.Config) { c.Logging.Level = "loud" }},
		{"bad verb", func(c *config.Config) {
			c.Announcements = []config.AnnouncementSpec{{Name: "x", Schedule: "@hourly", Level: "danger", Message: "m"}}
		}},
		{"bad schedule", func(c *config.Config) {
			c.Announcements = []config.AnnouncementSpec{{Name: "x", Schedule: "every day", Level: "info", Message: "m"}}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := quietConfig()
			tt.mutate(cfg)
			if _, err := New("", WithConfig(cfg)); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestNewMissingFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestApplyConfigUpdatesConsole(t *testing.T) {
	cfg := quietConfig()
	a, err := New("", WithConfig(cfg), WithConsoleOutput(&syncBuffer{}))
	if err != nil {
		t.Fatal(err)
	}
	next := quietConfig()
	next.Renderers.Console.MaxVisible = 1
	a.applyConfig(context.Background(), cfg, next)

	for _, m := range []string{"one", "two", "three"} {
		if err := a.console.Render(context.Background(), toast.Message{Message: m, Type: toast.Info}); err != nil {
			t.Fatal(err)
		}
	}
	if v := a.console.Visible(); len(v) != 1 || v[0].Message.Message != "three" {
		t.Fatalf("visible = %+v", v)
	}
}

func TestStopBeforeStart(t *testing.T) {
	a, err := New("", WithConfig(quietConfig()))
	if err != nil {
		t.Fatal(err)
	}
	if err := a.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case <-a.Done():
	default:
		t.Fatal("Done should be closed before Start")
	}
}
