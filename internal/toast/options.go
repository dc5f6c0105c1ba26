package toast

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"
)

// Options configures how a renderer shows one toast. The zero value means
// "renderer defaults".
type Options struct {
	// DurationMs is the display time before auto-dismiss. 0 = renderer default.
	DurationMs int `json:"duration_ms,omitempty"`
	// Dismissible is nil when the producer has no preference.
	Dismissible *bool `json:"dismissible,omitempty"`
}

// MaxDuration caps how long a toast may stay up. Larger requests are clamped.
const MaxDuration = 24 * time.Hour

const maxDurationMs = int(MaxDuration / time.Millisecond)

func (o Options) IsZero() bool { return o.DurationMs <= 0 && o.Dismissible == nil }

// DurationOr returns the requested display time, or def if none was set.
// The result never exceeds MaxDuration.
func (o Options) DurationOr(def time.Duration) time.Duration {
	if o.DurationMs <= 0 {
		return min(def, MaxDuration)
	}
	return time.Duration(min(o.DurationMs, maxDurationMs)) * time.Millisecond
}

func (o Options) DismissibleOr(def bool) bool {
	if o.Dismissible == nil {
		return def
	}
	return *o.Dismissible
}

// UnmarshalJSON ignores unknown keys, even when the surrounding decoder
// was configured with DisallowUnknownFields.
func (o *Options) UnmarshalJSON(b []byte) error {
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*o = ParseOptions(m)
	return nil
}

// ParseOptions builds Options from a loosely typed bag. Recognized keys are
// duration_ms (or durationMs) and dismissible; everything else is ignored, as
// are values of the wrong kind. Durations above MaxDuration are clamped.
func ParseOptions(m map[string]any) Options {
	var o Options
	for _, k := range []string{"duration_ms", "durationMs"} {
		if v, ok := m[k]; ok {
			if ms, ok := asInt(v); ok && ms > 0 {
				o.DurationMs = min(ms, maxDurationMs)
				break
			}
		}
	}
	if v, ok := m["dismissible"]; ok {
		if b, ok := asBool(v); ok {
			o.Dismissible = &b
		}
	}
	return o
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case int32:
		return int(x), true
	case int64:
		return int(x), true
	case uint:
		return int(min(x, uint(math.MaxInt))), true
	case uint64:
		return int(min(x, uint64(math.MaxInt))), true
	case float32:
		return floatInt(float64(x))
	case float64:
		return floatInt(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return int(n), true
		}
		if f, err := x.Float64(); err == nil {
			return floatInt(f)
		}
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(x)); err == nil {
			return n, true
		}
	}
	return 0, false
}

func floatInt(f float64) (int, bool) {
	switch {
	case math.IsNaN(f):
		return 0, false
	case f >= math.MaxInt64:
		return math.MaxInt, true
	case f <= math.MinInt64:
		return math.MinInt, true
	}
	return int(f), true
}

func asBool(v any) (bool, bool) {
	switch x := v.(type) {
	case bool:
		return x, true
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		return b, err == nil
	}
	return false, false
}

// Bool is a helper for setting Options.Dismissible inline.
func Bool(v bool) *bool { return &v }
