// Package app wires the event bus, the toast facade, renderers and
// announcements into one process.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"

	"toastrelay/internal/announce"
	"toastrelay/internal/config"
	"toastrelay/internal/eventbus"
	"toastrelay/internal/render"
	"toastrelay/internal/render/console"
	"toastrelay/internal/render/desktop"
	"toastrelay/internal/runtime/supervisor"
	"toastrelay/internal/toast"
	logx "toastrelay/pkg/logx"
)

type Option func(*App)

// WithConsoleOutput sets where the console renderer draws. Default: stdout.
func WithConsoleOutput(w io.Writer) Option {
	return func(a *App) { a.out = w }
}

// WithConfig runs from cfg instead of a file. Hot reload is disabled.
func WithConfig(cfg *config.Config) Option {
	return func(a *App) { a.cfg = cfg }
}

type App struct {
	cfgPath string
	cfg     *config.Config
	out     io.Writer

	cfgm *config.ConfigManager
	sup  *supervisor.Supervisor

	log  logx.Logger
	logs *logx.Service

	bus      *eventbus.Bus
	notifier *toast.Notifier

	console *console.Renderer
	desktop *desktop.Renderer
	announc *announce.Service

	unsubs []func()
}

// New loads cfgPath (JSON or YAML) and builds every component. An empty path
// runs on config.Default().
func New(cfgPath string, opts ...Option) (*App, error) {
	a := &App{cfgPath: strings.TrimSpace(cfgPath)}
	for _, o := range opts {
		o(a)
	}

	cfg := a.cfg
	switch {
	case cfg != nil:
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	case a.cfgPath != "":
		a.cfgm = config.NewConfigManager(a.cfgPath)
		loaded, err := a.cfgm.Load()
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		cfg = loaded
	default:
		cfg = config.Default()
	}
	if err := announce.Validate(cfg.Announcements); err != nil {
		return nil, err
	}
	a.cfg = cfg

	defaults, err := mapRenderDefaults(cfg)
	if err != nil {
		return nil, err
	}

	logSvc, log := logx.New(mapLogConfig(cfg))
	a.logs = logSvc
	a.log = log.With(logx.String("comp", "app"))

	a.bus = eventbus.New(eventbus.WithLogger(log.With(logx.String("comp", "eventbus"))))
	a.notifier = toast.NewNotifier(a.bus)

	if cfg.Renderers.Console.Enabled {
		a.console = console.New(a.out, mapConsoleConfig(cfg, defaults))
	}
	if cfg.Renderers.Desktop.Enabled {
		d, err := desktop.Dial(mapDesktopConfig(cfg, defaults), log.With(logx.String("comp", "desktop")))
		if err != nil {
			// A headless host has no session bus; keep running without it.
			a.log.Warn("desktop renderer unavailable", logx.Err(fmt.Errorf("%w: %v", render.ErrRendererDisabled, err)))
		} else {
			a.desktop = d
		}
	}

	a.announc = announce.New(a.notifier, log.With(logx.String("comp", "announce")))
	if err := a.announc.Apply(cfg.Announcements); err != nil {
		return nil, err
	}
	return a, nil
}

// Notifier is the producer-side facade.
func (a *App) Notifier() *toast.Notifier { return a.notifier }

// Bus is the shared channel; extra consumers may subscribe to toast.Topic.
func (a *App) Bus() *eventbus.Bus { return a.bus }

func (a *App) Logger() logx.Logger { return a.log }

// Done is closed when the app supervisor context is canceled (fatal error or Stop()).
func (a *App) Done() <-chan struct{} {
	if a.sup == nil {
		ch := make(chan struct{})
		close(ch)
		return ch
	}
	return a.sup.Context().Done()
}

// Err returns the first fatal error observed by the supervisor (if any).
func (a *App) Err() error {
	if a.sup == nil {
		return nil
	}
	return a.sup.Err()
}

func (a *App) Start(ctx context.Context) error {
	if a.sup != nil {
		return errors.New("app already started")
	}
	a.sup = supervisor.New(ctx, supervisor.WithLogger(a.log), supervisor.WithCancelOnError(true))

	if a.console != nil {
		a.runRenderer(a.console, a.cfg.Renderers.Console.Buffer)
	}
	if a.desktop != nil {
		a.runRenderer(a.desktop, a.cfg.Renderers.Desktop.Buffer)
	}

	a.announc.Start(a.sup.Context())

	if a.cfgm != nil {
		a.cfgm.SetLogger(a.log.With(logx.String("comp", "config")))
		a.cfgm.SetValidator(func(_ context.Context, cfg *config.Config) error {
			if err := announce.Validate(cfg.Announcements); err != nil {
				return err
			}
			_, err := mapRenderDefaults(cfg)
			return err
		})

		sub := a.cfgm.Subscribe(8)
		a.sup.Go("config.reload", func(c context.Context) error {
			defer a.cfgm.Unsubscribe(sub)
			return a.reloadLoop(c, sub)
		})
		a.sup.Go("config.watch", func(c context.Context) error {
			return a.cfgm.Watch(c)
		})
	}

	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		a.log.Warn("sd_notify ready failed", logx.Err(err))
	} else if ok {
		a.log.Debug("sd_notify ready sent")
	}

	a.log.Info("app started",
		logx.Bool("console", a.console != nil),
		logx.Bool("desktop", a.desktop != nil),
		logx.Int("announcements", len(a.cfg.Announcements)),
	)
	return nil
}

// runRenderer subscribes before returning so toasts sent right after Start
// are not lost; draining happens under the supervisor.
func (a *App) runRenderer(r render.Renderer, buffer int) {
	ch, cancel := a.bus.SubscribeChan(toast.Topic, bufferOrDefault(buffer))
	a.unsubs = append(a.unsubs, cancel)

	log := a.log.With(logx.String("comp", "render"))
	a.sup.GoRestart("render."+r.Name(), func(c context.Context) error {
		return render.Drain(c, ch, r, log)
	}, supervisor.WithRestartBackoff(250*time.Millisecond, 5*time.Second))
}

func (a *App) reloadLoop(ctx context.Context, sub chan *config.Config) error {
	lastApplied := a.cfgm.Get()
	for {
		select {
		case <-ctx.Done():
			return nil
		case newCfg, ok := <-sub:
			if !ok {
				return nil
			}
			// Coalesce bursts: keep only the latest config in the channel.
		drain:
			for {
				select {
				case newer := <-sub:
					if newer != nil {
						newCfg = newer
					}
				default:
					break drain
				}
			}
			a.applyConfig(ctx, lastApplied, newCfg)
			lastApplied = newCfg
		}
	}
}

func (a *App) applyConfig(ctx context.Context, oldCfg, newCfg *config.Config) {
	sections, fields := config.SummarizeChange(oldCfg, newCfg)
	if len(sections) == 0 {
		a.log.Info("config reloaded (no changes)")
		return
	}

	a.logs.Apply(mapLogConfig(newCfg))

	defaults, err := mapRenderDefaults(newCfg)
	if err != nil {
		a.log.Warn("invalid toast defaults; keeping previous", logx.Err(err))
	} else {
		if a.console != nil {
			a.console.Apply(mapConsoleConfig(newCfg, defaults))
		}
		if a.desktop != nil {
			a.desktop.Apply(mapDesktopConfig(newCfg, defaults))
		}
	}
	if oldCfg != nil && (oldCfg.Renderers.Console.Enabled != newCfg.Renderers.Console.Enabled ||
		oldCfg.Renderers.Desktop.Enabled != newCfg.Renderers.Desktop.Enabled) {
		a.log.Warn("renderer enable flags changed; restart required for changes to take effect")
	}

	if err := a.announc.Apply(newCfg.Announcements); err != nil {
		a.log.Warn("invalid announcements; keeping previous", logx.Err(err))
	}

	a.cfg = newCfg
	fields = append([]logx.Field{logx.String("changed", strings.Join(sections, ","))}, fields...)
	a.log.Info("config reloaded", fields...)
}

func (a *App) Stop(ctx context.Context) error {
	if a.sup == nil {
		return nil
	}
	a.log.Info("stopping")
	if _, err := daemon.SdNotify(false, daemon.SdNotifyStopping); err != nil {
		a.log.Debug("sd_notify stopping failed", logx.Err(err))
	}

	// Producers first so nothing is published into renderers that are going away.
	a.stopStep(ctx, "announce", 2*time.Second, func(c context.Context) error { a.announc.Stop(c); return nil })

	a.sup.Cancel()
	err := a.sup.Wait(ctx)
	for _, cancel := range a.unsubs {
		cancel()
	}
	a.unsubs = nil
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		a.log.Warn("supervisor wait timed out", logx.Err(err))
	}

	if a.desktop != nil {
		a.stopStep(ctx, "desktop", time.Second, func(context.Context) error { return a.desktop.Close() })
	}

	a.log.Info("stopped")
	if a.logs != nil {
		_ = a.logs.Close()
	}
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
