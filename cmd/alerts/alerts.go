// Package alerts implements the `veritrack alerts` command group.
package alerts

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/veritrack/veritrack-go/internal/app"
	"github.com/veritrack/veritrack-go/internal/conf"
	"github.com/veritrack/veritrack-go/internal/logger"
)

// Command creates the alerts command group.
func Command(settings *conf.Settings, log logger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "Alert evaluation operations",
	}
	cmd.AddCommand(processCommand(settings, log))
	return cmd
}

// processCommand runs one evaluation cycle and prints its counts. A fatal
// cycle error yields a nonzero exit status.
func processCommand(settings *conf.Settings, log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "process",
		Short: "Run one alert evaluation cycle",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := app.New(settings, log)
			if err != nil {
				return err
			}
			defer func() { _ = a.Close() }()

			execution, err := a.Engine.ProcessAlerts(cmd.Context())
			if err != nil {
				return fmt.Errorf("alert cycle failed: %w", err)
			}

			fmt.Printf("checked=%d triggered=%d notified=%d\n",
				execution.Checked, execution.Triggered, execution.Notified)
			return nil
		},
	}
}
