package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"toastrelay/internal/announce"
	"toastrelay/internal/config"
)

func newCheckCommand(configFlag *string) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Parse and validate a configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := strings.TrimSpace(*configFlag)
			if path == "" {
				return errors.New("check requires --config")
			}
			cfg, err := config.NewConfigManager(path).Parse()
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			if err := errors.Join(cfg.Validate(), announce.Validate(cfg.Announcements)); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: OK\n", path)
			if len(cfg.Announcements) == 0 {
				return nil
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(out)
			tw.SetStyle(table.StyleLight)
			tw.AppendHeader(table.Row{"Name", "Schedule", "Level", "Message"})
			for _, a := range cfg.Announcements {
				tw.AppendRow(table.Row{a.Name, a.Schedule, a.Level, a.Message})
			}
			tw.Render()
			return nil
		},
	}
}
