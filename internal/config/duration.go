package config

import (
	"fmt"
	"strings"
	"time"

	"toastrelay/internal/toast"
)

// MinToastDuration is the shortest toast.default_duration accepted; anything
// shorter would vanish before a renderer draws it.
const MinToastDuration = 100 * time.Millisecond

// ParseToastDuration reads toast.default_duration. Empty means def. Values
// must lie within [MinToastDuration, toast.MaxDuration] so renderers never
// see a display time that overflows their own units.
func ParseToastDuration(raw string, def time.Duration) (time.Duration, error) {
	const path = "toast.default_duration"
	s := strings.TrimSpace(raw)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", path, raw, err)
	}
	if d < MinToastDuration || d > toast.MaxDuration {
		return 0, fmt.Errorf("%s: %s outside [%s, %s]", path, d, MinToastDuration, toast.MaxDuration)
	}
	return d, nil
}
