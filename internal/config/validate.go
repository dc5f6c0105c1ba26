package config

import (
	"errors"
	"fmt"
	"strings"

	"toastrelay/internal/toast"
	logx "toastrelay/pkg/logx"
)

// Validate checks the fields that can be checked without external state.
// Cron expressions are validated by the announce package.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	var errs []error
	if !logx.ValidLevel(c.Logging.Level) {
		errs = append(errs, fmt.Errorf("logging.level: unknown level %q", c.Logging.Level))
	}
	if _, err := ParseToastDuration(c.Toast.DefaultDuration, 0); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(strings.TrimSpace(c.Renderers.Console.Color)) {
	case "", "auto", "always", "never":
	default:
		errs = append(errs, fmt.Errorf("renderers.console.color: want auto|always|never, got %q", c.Renderers.Console.Color))
	}
	if c.Renderers.Console.MaxVisible < 0 {
		errs = append(errs, errors.New("renderers.console.max_visible must be >= 0"))
	}
	if c.Renderers.Desktop.RatePerSec < 0 {
		errs = append(errs, errors.New("renderers.desktop.rate_per_sec must be >= 0"))
	}

	seen := map[string]bool{}
	for i, a := range c.Announcements {
		path := fmt.Sprintf("announcements[%d]", i)
		name := strings.TrimSpace(a.Name)
		if name == "" {
			errs = append(errs, fmt.Errorf("%s.name is required", path))
		} else if seen[name] {
			errs = append(errs, fmt.Errorf("%s.name %q is duplicated", path, name))
		}
		seen[name] = true
		if strings.TrimSpace(a.Schedule) == "" {
			errs = append(errs, fmt.Errorf("%s.schedule is required", path))
		}
		if _, ok := toast.TypeFor(a.Level); !ok {
			errs = append(errs, fmt.Errorf("%s.level %q: %w", path, a.Level, toast.ErrUnknownVerb))
		}
	}
	return errors.Join(errs...)
}
