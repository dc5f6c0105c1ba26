package desktop

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"toastrelay/internal/render"
	"toastrelay/internal/toast"
	logx "toastrelay/pkg/logx"
)

type captured struct {
	notes []Notification
	err   error
}

func (c *captured) send(ctx context.Context, n Notification) (uint32, error) {
	if c.err != nil {
		return 0, c.err
	}
	c.notes = append(c.notes, n)
	return uint32(len(c.notes)), nil
}

func TestBuildMapsTypeAndOptions(t *testing.T) {
	t.Parallel()
	cfg := Config{AppName: "app", Defaults: render.Defaults{Duration: 4 * time.Second}}
	tests := []struct {
		name    string
		msg     toast.Message
		icon    string
		urgency byte
		summary string
		expire  int32
	}{
		{"success", toast.Message{Message: "ok", Type: toast.Success}, "emblem-default", urgencyLow, "Success", 4000},
		{"warning", toast.Message{Message: "hm", Type: toast.Warning}, "dialog-warning", urgencyNormal, "Warning", 4000},
		{"danger", toast.Message{Message: "no", Type: toast.Danger, Options: toast.Options{DurationMs: 1500}}, "dialog-error", urgencyCritical, "Error", 1500},
		{"unknown", toast.Message{Message: "?", Type: "sparkle"}, "dialog-information", urgencyLow, "Notice", 4000},
		{"huge duration", toast.Message{Message: "long", Type: toast.Info, Options: toast.Options{DurationMs: 3_000_000_000}}, "dialog-information", urgencyLow, "Info", 86_400_000},
		{"huge float duration", toast.Message{Message: "long", Type: toast.Info, Options: toast.ParseOptions(map[string]any{"duration_ms": 1e13})}, "dialog-information", urgencyLow, "Info", 86_400_000},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			n := build(cfg, tt.msg)
			if n.AppIcon != tt.icon || n.Summary != tt.summary || n.Body != tt.msg.Message || n.AppName != "app" {
				t.Fatalf("notification = %+v", n)
			}
			if n.ExpireTimeout != tt.expire {
				t.Fatalf("ExpireTimeout = %d, want %d", n.ExpireTimeout, tt.expire)
			}
			u, ok := n.Hints["urgency"].Value().(byte)
			if !ok || u != tt.urgency {
				t.Fatalf("urgency = %v, want %d", n.Hints["urgency"].Value(), tt.urgency)
			}
		})
	}
}

func TestExpireTimeoutSaturates(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   time.Duration
		want int32
	}{
		{1500 * time.Millisecond, 1500},
		{time.Duration(math.MaxInt32+1) * time.Millisecond, math.MaxInt32},
		{time.Duration(math.MaxInt64), math.MaxInt32},
		{0, 1},
		{-time.Second, 1},
	}
	for _, tt := range tests {
		if got := expireTimeout(tt.in); got != tt.want {
			t.Errorf("expireTimeout(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestRenderRateLimits(t *testing.T) {
	t.Parallel()
	c := &captured{}
	r := newRenderer(Config{RatePerSec: 2}, c.send, logx.Nop())

	for i := 0; i < 5; i++ {
		if err := r.Render(context.Background(), toast.Message{Message: "burst", Type: toast.Info}); err != nil {
			t.Fatalf("Render: %v", err)
		}
	}
	if len(c.notes) != 2 {
		t.Fatalf("sent %d, want burst of 2", len(c.notes))
	}
	if c.notes[0].AppName != "toastrelay" {
		t.Fatalf("default app name = %q", c.notes[0].AppName)
	}
}

func TestRenderWrapsSendError(t *testing.T) {
	t.Parallel()
	boom := errors.New("no server")
	c := &captured{err: boom}
	r := newRenderer(Config{}, c.send, logx.Nop())

	err := r.Render(context.Background(), toast.Message{Message: "x", Type: toast.Info})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped %v", err, boom)
	}
	if r.Close() != nil {
		t.Fatal("Close without a connection should be a no-op")
	}
}
