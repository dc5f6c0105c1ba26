package config

import "toastrelay/internal/toast"

// Config is the on-disk configuration (JSON or YAML).
//
// All durations are Go duration strings (e.g. "500ms", "5s", "1m").
type Config struct {
	Logging       LoggingConfig      `json:"logging"`
	Toast         ToastConfig        `json:"toast"`
	Renderers     RenderersConfig    `json:"renderers"`
	Announcements []AnnouncementSpec `json:"announcements,omitempty"`
}

type LoggingConfig struct {
	Level   string      `json:"level"`
	Console bool        `json:"console"`
	File    LoggingFile `json:"file"`
}

type LoggingFile struct {
	Enabled bool   `json:"enabled"`
	Path    string `json:"path"`
}

// ToastConfig holds the renderer-side defaults applied when a toast's
// options leave a field unset.
type ToastConfig struct {
	DefaultDuration string `json:"default_duration,omitempty"` // default: "5s"
	// DefaultDismissible is a pointer so an omitted key means true.
	DefaultDismissible *bool `json:"default_dismissible,omitempty"`
}

type RenderersConfig struct {
	Console ConsoleConfig `json:"console"`
	Desktop DesktopConfig `json:"desktop"`
}

type ConsoleConfig struct {
	Enabled    bool `json:"enabled"`
	MaxVisible int  `json:"max_visible,omitempty"` // default: 5
	// Color is "auto" (TTY only), "always" or "never".
	Color  string `json:"color,omitempty"`
	Buffer int    `json:"buffer,omitempty"` // default: 32
}

// DesktopConfig drives the freedesktop (D-Bus) renderer.
type DesktopConfig struct {
	Enabled    bool   `json:"enabled"`
	AppName    string `json:"app_name,omitempty"`     // default: "toastrelay"
	RatePerSec int    `json:"rate_per_sec,omitempty"` // default: 2
	Buffer     int    `json:"buffer,omitempty"`       // default: 32
}

// AnnouncementSpec is a toast published on a cron schedule.
//
// Example:
//
//	announcements:
//	  - name: standup
//	    schedule: "0 9 * * 1-5"
//	    level: info
//	    message: "Standup in 5 minutes"
type AnnouncementSpec struct {
	Name     string `json:"name"`
	Schedule string `json:"schedule"`
	// Level is a notifier verb: success, warning, info or error.
	Level   string        `json:"level"`
	Message string        `json:"message"`
	Options toast.Options `json:"options,omitempty"`
}

// Default returns the config used when no file is given.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{Level: "info", Console: true},
		Toast:   ToastConfig{DefaultDuration: "5s"},
		Renderers: RenderersConfig{
			Console: ConsoleConfig{Enabled: true, MaxVisible: 5, Color: "auto", Buffer: 32},
			Desktop: DesktopConfig{AppName: "toastrelay", RatePerSec: 2, Buffer: 32},
		},
	}
}
