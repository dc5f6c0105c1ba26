package main

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"toastrelay/internal/app"
	"toastrelay/internal/toast"
)

func newDemoCommand(configFlag *string) *cobra.Command {
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Emit one toast of every kind and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(*configFlag, app.WithConsoleOutput(cmd.OutOrStdout()))
			if err != nil {
				return err
			}
			if err := a.Start(cmd.Context()); err != nil {
				return err
			}

			emitDemo(a.Notifier())

			// Renderers drain on their own goroutines.
			t := time.NewTimer(delay)
			select {
			case <-cmd.Context().Done():
			case <-t.C:
			}
			t.Stop()

			stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return a.Stop(stopCtx)
		},
	}
	cmd.Flags().DurationVar(&delay, "delay", 500*time.Millisecond, "How long to wait for renderers before exiting")
	return cmd
}

func emitDemo(n *toast.Notifier) {
	n.Success("Saved")
	n.Info("Sync started", toast.Options{DurationMs: 3000})
	n.Warning("Disk almost full", toast.Options{Dismissible: toast.Bool(false)})
	n.Error("Failed to save")
	n.Send("Custom types pass through unchanged", toast.Type("custom"))
}
