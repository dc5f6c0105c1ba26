// Package console renders toasts as boxed blocks on a terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"toastrelay/internal/render"
	"toastrelay/internal/toast"
)

type Config struct {
	// MaxVisible caps the visible stack; the oldest toast is evicted first.
	MaxVisible int
	// Color is "auto", "always" or "never".
	Color    string
	Defaults render.Defaults
}

// Entry is one toast on the visible stack.
type Entry struct {
	ID          string
	Message     toast.Message
	Dismissible bool
	Shown       time.Time
	Expires     time.Time
}

type Renderer struct {
	mu      sync.Mutex
	out     io.Writer
	cfg     Config
	color   bool
	now     func() time.Time
	visible []Entry
}

func New(out io.Writer, cfg Config) *Renderer {
	if out == nil {
		out = os.Stdout
	}
	r := &Renderer{out: out, now: time.Now}
	r.Apply(cfg)
	return r
}

func (r *Renderer) Name() string { return "console" }

// Apply updates limits, colour mode and defaults. The visible stack is trimmed
// to the new limit.
func (r *Renderer) Apply(cfg Config) {
	if cfg.MaxVisible <= 0 {
		cfg.MaxVisible = 5
	}
	if cfg.Defaults.Duration <= 0 {
		cfg.Defaults.Duration = render.DefaultDefaults().Duration
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg = cfg
	r.color = useColor(cfg.Color, r.out)
	if n := len(r.visible) - cfg.MaxVisible; n > 0 {
		r.visible = append([]Entry(nil), r.visible[n:]...)
	}
}

func (r *Renderer) Render(ctx context.Context, m toast.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	now := r.now()
	r.pruneLocked(now)

	e := Entry{
		ID:          uuid.NewString(),
		Message:     m,
		Dismissible: m.Options.DismissibleOr(r.cfg.Defaults.Dismissible),
		Shown:       now,
		Expires:     now.Add(m.Options.DurationOr(r.cfg.Defaults.Duration)),
	}
	r.visible = append(r.visible, e)
	if n := len(r.visible) - r.cfg.MaxVisible; n > 0 {
		r.visible = append([]Entry(nil), r.visible[n:]...)
	}
	block := r.formatLocked(e)
	r.mu.Unlock()

	_, err := fmt.Fprintln(r.out, block)
	return err
}

// Visible returns a copy of the current stack, oldest first.
func (r *Renderer) Visible() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Entry(nil), r.visible...)
}

// Prune drops toasts whose display time has passed and reports how many went.
func (r *Renderer) Prune(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pruneLocked(now)
}

// Dismiss removes a dismissible toast by ID or by an unambiguous ID prefix,
// such as the short form printed in the footer.
func (r *Renderer) Dismiss(id string) bool {
	id = strings.TrimSpace(id)
	if id == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	match := -1
	for i, e := range r.visible {
		if e.ID == id {
			match = i
			break
		}
		if strings.HasPrefix(e.ID, id) {
			if match >= 0 {
				return false
			}
			match = i
		}
	}
	if match < 0 || !r.visible[match].Dismissible {
		return false
	}
	r.visible = append(r.visible[:match:match], r.visible[match+1:]...)
	return true
}

func (r *Renderer) pruneLocked(now time.Time) int {
	kept := r.visible[:0]
	for _, e := range r.visible {
		if now.Before(e.Expires) {
			kept = append(kept, e)
		}
	}
	n := len(r.visible) - len(kept)
	r.visible = kept
	return n
}

func (r *Renderer) formatLocked(e Entry) string {
	style := table.StyleRounded
	style.Format.Footer = text.FormatDefault
	tw := table.NewWriter()
	tw.SetStyle(style)
	tw.AppendHeader(table.Row{e.Message.Type.Label()})
	tw.AppendRow(table.Row{e.Message.Message})

	footer := e.Expires.Sub(e.Shown).Round(time.Millisecond).String()
	if e.Dismissible {
		footer += " · dismiss " + shortID(e.ID)
	}
	tw.AppendFooter(table.Row{footer})

	if r.color {
		fg := typeColor(e.Message.Type)
		tw.SetColumnConfigs([]table.ColumnConfig{{
			Number:       1,
			Colors:       text.Colors{fg},
			ColorsHeader: text.Colors{fg, text.Bold},
			ColorsFooter: text.Colors{text.Faint},
		}})
	}
	return tw.Render()
}

// Unknown types get the info colour.
func typeColor(t toast.Type) text.Color {
	switch t {
	case toast.Success:
		return text.FgGreen
	case toast.Warning:
		return text.FgYellow
	case toast.Danger:
		return text.FgRed
	default:
		return text.FgCyan
	}
}

func useColor(mode string, out io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
