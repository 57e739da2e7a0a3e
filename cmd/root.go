// Package cmd assembles the veritrack command-line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/veritrack/veritrack-go/cmd/alerts"
	"github.com/veritrack/veritrack-go/cmd/serve"
	"github.com/veritrack/veritrack-go/internal/conf"
	"github.com/veritrack/veritrack-go/internal/logger"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings, log logger.Logger) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "veritrack",
		Short:         "VeriTrack alert evaluation engine",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	subcommands := []*cobra.Command{
		alerts.Command(settings, log),
		serve.Command(settings, log),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}
