package main

import (
	"fmt"
	"os"

	"github.com/veritrack/veritrack-go/cmd"
	"github.com/veritrack/veritrack-go/internal/conf"
	"github.com/veritrack/veritrack-go/internal/logger"
	"github.com/veritrack/veritrack-go/internal/telemetry"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewSlogLogger(os.Stdout, logger.LogLevel(settings.Main.LogLevel))

	if err := telemetry.Init(&settings.Telemetry, version); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer telemetry.Flush()

	rootCmd := cmd.RootCommand(settings, log)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		telemetry.Flush()
		os.Exit(1)
	}
}
