// Package serve implements the `veritrack serve` command: the admin HTTP
// server plus the optional built-in cycle scheduler.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/veritrack/veritrack-go/internal/api"
	"github.com/veritrack/veritrack-go/internal/app"
	"github.com/veritrack/veritrack-go/internal/conf"
	"github.com/veritrack/veritrack-go/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// Command creates the serve command.
func Command(settings *conf.Settings, log logger.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin API server and the cycle scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), settings, log)
		},
	}
}

func runServe(ctx context.Context, settings *conf.Settings, log logger.Logger) error {
	interval := settings.Alerting.Interval.Std()
	if !settings.API.Enabled && interval <= 0 {
		return fmt.Errorf("nothing to run: api.enabled is false and alerting.interval is zero")
	}

	a, err := app.New(settings, log)
	if err != nil {
		return err
	}
	defer func() { _ = a.Close() }()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var controller *api.Controller
	serverErr := make(chan error, 1)
	if settings.API.Enabled {
		controller = api.New(a.Engine, a.Alerts, a.Metrics, log.Module("api"))
		go func() {
			serverErr <- controller.Start(settings.API.Listen)
		}()
		log.Info("admin API listening", logger.String("listen", settings.API.Listen))
	}

	if interval > 0 {
		go runScheduler(ctx, a, interval, log.Module("scheduler"))
	}

	select {
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("shutting down")
		if controller != nil {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := controller.Shutdown(shutdownCtx); err != nil {
				return err
			}
		}
	}
	return nil
}

// runScheduler triggers a cycle every interval until the context ends. A
// failed cycle is logged; the scheduler keeps going.
func runScheduler(ctx context.Context, a *app.App, interval time.Duration, log logger.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info("cycle scheduler started", logger.Duration("interval", interval))
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.Engine.ProcessAlerts(ctx); err != nil {
				log.Error("scheduled alert cycle failed", logger.Error(err))
			}
		}
	}
}
