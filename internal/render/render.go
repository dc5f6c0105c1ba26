// Package render drives toast renderers from the event bus.
//
// Renderers are consumers of the toast topic and nothing else: they see the
// same Message every other subscriber sees and own every display decision
// (queueing, styling, auto-dismiss timing).
package render

import (
	"context"
	"errors"
	"fmt"
	"time"

	"toastrelay/internal/toast"
	logx "toastrelay/pkg/logx"
)

var ErrRendererDisabled = errors.New("renderer disabled")

type Renderer interface {
	Name() string
	Render(ctx context.Context, m toast.Message) error
}

// Source is the subscription side of the event bus.
type Source interface {
	SubscribeChan(topic string, buffer int) (<-chan any, func())
}

// Defaults fill in options a toast leaves unset.
type Defaults struct {
	Duration    time.Duration
	Dismissible bool
}

func DefaultDefaults() Defaults {
	return Defaults{Duration: 5 * time.Second, Dismissible: true}
}

// Run subscribes r to the toast topic and renders until ctx is done or the
// subscription closes.
func Run(ctx context.Context, src Source, r Renderer, buffer int, log logx.Logger) error {
	ch, cancel := src.SubscribeChan(toast.Topic, buffer)
	defer cancel()
	return Drain(ctx, ch, r, log)
}

// Drain renders payloads from ch until ctx is done or ch is closed. Callers
// that must not miss early toasts subscribe first and drain later. Payloads
// that are not toast.Message are skipped and render errors are logged;
// neither stops the loop.
func Drain(ctx context.Context, ch <-chan any, r Renderer, log logx.Logger) error {
	if log.IsZero() {
		log = logx.Nop()
	}
	log = log.With(logx.String("renderer", r.Name()))

	log.Debug("renderer draining")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case p, ok := <-ch:
			if !ok {
				return nil
			}
			m, ok := p.(toast.Message)
			if !ok {
				log.Warn("ignoring non-toast payload", logx.String("payload_type", typeName(p)))
				continue
			}
			if err := r.Render(ctx, m); err != nil {
				if errors.Is(err, context.Canceled) {
					return err
				}
				log.Warn("render failed", logx.String("type", string(m.Type)), logx.Err(err))
			}
		}
	}
}

func typeName(v any) string {
	if v == nil {
		return "<nil>"
	}
	return fmt.Sprintf("%T", v)
}
