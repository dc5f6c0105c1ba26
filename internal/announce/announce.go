// Package announce publishes config-declared toasts on cron schedules.
package announce

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"toastrelay/internal/config"
	"toastrelay/internal/toast"
	logx "toastrelay/pkg/logx"
)

var ErrInvalidSchedule = errors.New("invalid schedule")

// Sender is the facade method announcements go through.
type Sender interface {
	Send(message string, typ toast.Type, opts ...toast.Options)
}

// Service owns one cron instance; Apply swaps the whole entry set.
type Service struct {
	mu     sync.Mutex
	log    logx.Logger
	sender Sender
	parser cron.Parser
	loc    *time.Location

	c    *cron.Cron
	defs []config.AnnouncementSpec
	// stopped is closed by Stop; it ends the ctx watcher of the current run.
	stopped chan struct{}
}

type Option func(*Service)

// WithLocation sets the timezone schedules are evaluated in. Default: local.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

func New(sender Sender, log logx.Logger, opts ...Option) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Service{
		log:    log,
		sender: sender,
		parser: newParser(),
		loc:    time.Local,

		stopped: make(chan struct{}),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SecondOptional allows both 5-field and 6-field (with seconds) specs.
func newParser() cron.Parser {
	return cron.NewParser(cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
}

// Validate checks every schedule and level without registering anything.
func Validate(defs []config.AnnouncementSpec) error {
	p := newParser()
	var errs []error
	for _, d := range defs {
		if _, err := p.Parse(strings.TrimSpace(d.Schedule)); err != nil {
			errs = append(errs, fmt.Errorf("announcement %q: %w: %v", d.Name, ErrInvalidSchedule, err))
		}
		if _, ok := toast.TypeFor(d.Level); !ok {
			errs = append(errs, fmt.Errorf("announcement %q: level %q: %w", d.Name, d.Level, toast.ErrUnknownVerb))
		}
	}
	return errors.Join(errs...)
}

// Apply replaces the registered announcements. Invalid definitions are
// rejected as a whole and the previous set stays active.
func (s *Service) Apply(defs []config.AnnouncementSpec) error {
	if err := Validate(defs); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.defs = append([]config.AnnouncementSpec(nil), defs...)
	if s.c != nil {
		s.restartLocked()
	}
	return nil
}

// Start runs the scheduler until Stop is called or ctx is done.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.c != nil {
		return
	}
	s.c = cron.New(cron.WithParser(s.parser), cron.WithLocation(s.loc))
	s.registerLocked()
	s.c.Start()
	s.log.Info("announcements started", logx.Int("count", len(s.defs)), logx.String("tz", s.loc.String()))

	stopped := s.stopped
	go func() {
		select {
		case <-ctx.Done():
			s.stop(context.Background(), stopped)
		case <-stopped:
		}
	}()
}

// Stop waits for running jobs until ctx is done.
func (s *Service) Stop(ctx context.Context) { s.stop(ctx, nil) }

// stop ends the current run. A non-nil run only matches the run it was
// captured from, so a late ctx watcher can't stop a newer Start.
func (s *Service) stop(ctx context.Context, run chan struct{}) {
	s.mu.Lock()
	if run != nil && run != s.stopped {
		s.mu.Unlock()
		return
	}
	c := s.c
	s.c = nil
	if c != nil {
		close(s.stopped)
		s.stopped = make(chan struct{})
	}
	s.mu.Unlock()
	if c == nil {
		return
	}
	select {
	case <-c.Stop().Done():
	case <-ctx.Done():
	}
	s.log.Info("announcements stopped")
}

// Next reports the next fire time of each registered announcement by name.
func (s *Service) Next() map[string]time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[string]time.Time{}
	if s.c == nil {
		return out
	}
	for _, e := range s.c.Entries() {
		if j, ok := e.Job.(job); ok {
			out[j.def.Name] = e.Next
		}
	}
	return out
}

func (s *Service) restartLocked() {
	old := s.c
	s.c = cron.New(cron.WithParser(s.parser), cron.WithLocation(s.loc))
	s.registerLocked()
	s.c.Start()
	// Don't wait for in-flight jobs; they only publish.
	old.Stop()
	s.log.Info("announcements reloaded", logx.Int("count", len(s.defs)))
}

func (s *Service) registerLocked() {
	for _, d := range s.defs {
		if _, err := s.c.AddJob(strings.TrimSpace(d.Schedule), job{s: s, def: d}); err != nil {
			// Validate already ran; this only happens if the parser changed.
			s.log.Warn("announcement not registered", logx.String("name", d.Name), logx.Err(err))
		}
	}
}

type job struct {
	s   *Service
	def config.AnnouncementSpec
}

func (j job) Run() { j.s.fire(j.def) }

func (s *Service) fire(d config.AnnouncementSpec) {
	typ, ok := toast.TypeFor(d.Level)
	if !ok || s.sender == nil {
		return
	}
	s.log.Debug("announcement fired", logx.String("name", d.Name), logx.String("type", string(typ)))
	s.sender.Send(d.Message, typ, d.Options)
}
