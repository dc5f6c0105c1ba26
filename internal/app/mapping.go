package app

import (
	"strings"

	"toastrelay/internal/config"
	"toastrelay/internal/render"
	"toastrelay/internal/render/console"
	"toastrelay/internal/render/desktop"
	logx "toastrelay/pkg/logx"
)

func mapLogConfig(cfg *config.Config) logx.Config {
	return logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.Console,
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	}
}

func mapRenderDefaults(cfg *config.Config) (render.Defaults, error) {
	def := render.DefaultDefaults()
	d, err := config.ParseToastDuration(cfg.Toast.DefaultDuration, def.Duration)
	if err != nil {
		return render.Defaults{}, err
	}
	def.Duration = d
	if cfg.Toast.DefaultDismissible != nil {
		def.Dismissible = *cfg.Toast.DefaultDismissible
	}
	return def, nil
}

func mapConsoleConfig(cfg *config.Config, def render.Defaults) console.Config {
	return console.Config{
		MaxVisible: cfg.Renderers.Console.MaxVisible,
		Color:      strings.ToLower(strings.TrimSpace(cfg.Renderers.Console.Color)),
		Defaults:   def,
	}
}

func mapDesktopConfig(cfg *config.Config, def render.Defaults) desktop.Config {
	return desktop.Config{
		AppName:    cfg.Renderers.Desktop.AppName,
		RatePerSec: cfg.Renderers.Desktop.RatePerSec,
		Defaults:   def,
	}
}

func bufferOrDefault(n int) int {
	if n <= 0 {
		return 32
	}
	return n
}
