// Package desktop renders toasts as freedesktop.org notifications over the
// D-Bus session bus.
package desktop

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"golang.org/x/time/rate"

	"toastrelay/internal/render"
	"toastrelay/internal/toast"
	logx "toastrelay/pkg/logx"
)

const (
	dbusObjectPath             = "/org/freedesktop/Notifications"
	dbusNotificationsInterface = "org.freedesktop.Notifications"
	callNotify                 = dbusNotificationsInterface + ".Notify"
)

// Urgency hint values (org.freedesktop.Notifications).
const (
	urgencyLow      byte = 0
	urgencyNormal   byte = 1
	urgencyCritical byte = 2
)

type Config struct {
	AppName    string
	RatePerSec int
	Defaults   render.Defaults
}

// Notification mirrors the arguments of org.freedesktop.Notifications.Notify.
type Notification struct {
	AppName       string
	ReplacesID    uint32
	AppIcon       string
	Summary       string
	Body          string
	Actions       []string
	Hints         map[string]dbus.Variant
	ExpireTimeout int32 // milliseconds; 0 = never expire
}

type sendFunc func(ctx context.Context, n Notification) (uint32, error)

// Renderer is safe for concurrent use.
type Renderer struct {
	mu      sync.Mutex
	cfg     Config
	limiter *rate.Limiter

	send sendFunc
	conn *dbus.Conn
	log  logx.Logger
}

// Dial connects to the session bus. Close releases the connection.
func Dial(cfg Config, log logx.Logger) (*Renderer, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("desktop: connect session bus: %w", err)
	}
	r := newRenderer(cfg, busSender(conn), log)
	r.conn = conn
	return r, nil
}

func newRenderer(cfg Config, send sendFunc, log logx.Logger) *Renderer {
	if log.IsZero() {
		log = logx.Nop()
	}
	r := &Renderer{send: send, log: log}
	r.Apply(cfg)
	return r
}

func (r *Renderer) Name() string { return "desktop" }

func (r *Renderer) Apply(cfg Config) {
	if strings.TrimSpace(cfg.AppName) == "" {
		cfg.AppName = "toastrelay"
	}
	if cfg.RatePerSec <= 0 {
		cfg.RatePerSec = 2
	}
	if cfg.Defaults.Duration <= 0 {
		cfg.Defaults.Duration = render.DefaultDefaults().Duration
	}
	r.mu.Lock()
	r.cfg = cfg
	// Token bucket: burst = rate per sec, so short spikes still get through.
	r.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), cfg.RatePerSec)
	r.mu.Unlock()
}

func (r *Renderer) Close() error {
	if r.conn == nil {
		return nil
	}
	return r.conn.Close()
}

// Render sends m to the notification server. Toasts over the rate limit are
// dropped, not queued.
func (r *Renderer) Render(ctx context.Context, m toast.Message) error {
	r.mu.Lock()
	cfg := r.cfg
	lim := r.limiter
	r.mu.Unlock()

	if !lim.Allow() {
		r.log.Debug("desktop toast dropped (rate limited)", logx.String("type", string(m.Type)))
		return nil
	}
	if _, err := r.send(ctx, build(cfg, m)); err != nil {
		return fmt.Errorf("desktop: notify: %w", err)
	}
	return nil
}

// build maps a toast onto Notify arguments. Dismissibility is left to the
// notification server; Notify has no per-notification switch for it.
func build(cfg Config, m toast.Message) Notification {
	icon, urgency := style(m.Type)
	return Notification{
		AppName:       cfg.AppName,
		AppIcon:       icon,
		Summary:       m.Type.Label(),
		Body:          m.Message,
		Actions:       []string{},
		Hints:         map[string]dbus.Variant{"urgency": dbus.MakeVariant(urgency)},
		ExpireTimeout: expireTimeout(m.Options.DurationOr(cfg.Defaults.Duration)),
	}
}

// expireTimeout converts d to Notify's int32 milliseconds, saturating instead
// of wrapping. A non-positive d would mean "never expire", so it becomes 1ms.
func expireTimeout(d time.Duration) int32 {
	ms := d.Milliseconds()
	switch {
	case ms > math.MaxInt32:
		return math.MaxInt32
	case ms < 1:
		return 1
	}
	return int32(ms)
}

// Unknown types get the info style.
func style(t toast.Type) (icon string, urgency byte) {
	switch t {
	case toast.Success:
		return "emblem-default", urgencyLow
	case toast.Warning:
		return "dialog-warning", urgencyNormal
	case toast.Danger:
		return "dialog-error", urgencyCritical
	default:
		return "dialog-information", urgencyLow
	}
}

func busSender(conn *dbus.Conn) sendFunc {
	return func(ctx context.Context, n Notification) (uint32, error) {
		obj := conn.Object(dbusNotificationsInterface, dbusObjectPath)
		call := obj.CallWithContext(ctx, callNotify, 0,
			n.AppName,
			n.ReplacesID,
			n.AppIcon,
			n.Summary,
			n.Body,
			n.Actions,
			n.Hints,
			n.ExpireTimeout)
		if call.Err != nil {
			return 0, call.Err
		}
		var id uint32
		if err := call.Store(&id); err != nil {
			return 0, err
		}
		return id, nil
	}
}
