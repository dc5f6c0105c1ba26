package config

import (
	"reflect"
	"sort"

	logx "toastrelay/pkg/logx"
)

// SummarizeChange returns the changed top-level sections plus safe
// structured fields for the reload log line.
func SummarizeChange(oldCfg, newCfg *Config) ([]string, []logx.Field) {
	if oldCfg == nil {
		oldCfg = &Config{}
	}
	if newCfg == nil {
		newCfg = &Config{}
	}

	changed := make([]string, 0, 4)
	fields := make([]logx.Field, 0, 8)

	if !reflect.DeepEqual(oldCfg.Logging, newCfg.Logging) {
		changed = append(changed, "logging")
		fields = append(fields,
			logx.String("logging.level", newCfg.Logging.Level),
			logx.Bool("logging.console", newCfg.Logging.Console),
			logx.Bool("logging.file_enabled", newCfg.Logging.File.Enabled),
		)
	}
	if !reflect.DeepEqual(oldCfg.Toast, newCfg.Toast) {
		changed = append(changed, "toast")
		fields = append(fields, logx.String("toast.default_duration", newCfg.Toast.DefaultDuration))
	}
	if !reflect.DeepEqual(oldCfg.Renderers, newCfg.Renderers) {
		changed = append(changed, "renderers")
		fields = append(fields,
			logx.Bool("renderers.console", newCfg.Renderers.Console.Enabled),
			logx.Bool("renderers.desktop", newCfg.Renderers.Desktop.Enabled),
		)
	}
	if !reflect.DeepEqual(oldCfg.Announcements, newCfg.Announcements) {
		changed = append(changed, "announcements")
		fields = append(fields, logx.Int("announcements.count", len(newCfg.Announcements)))
	}

	sort.Strings(changed)
	return changed, fields
}
