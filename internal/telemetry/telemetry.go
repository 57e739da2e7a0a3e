// Package telemetry wires enhanced errors into Sentry error reporting.
package telemetry

import (
	"fmt"
	"time"

	sentry "github.com/getsentry/sentry-go"

	"github.com/veritrack/veritrack-go/internal/conf"
	"github.com/veritrack/veritrack-go/internal/errors"
)

const flushTimeout = 2 * time.Second

// sentryReporter forwards enhanced errors to Sentry with component and
// category tags attached.
type sentryReporter struct{}

// Report implements errors.Reporter.
func (sentryReporter) Report(ee *errors.EnhancedError) {
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("component", ee.Component)
		scope.SetTag("category", string(ee.Category))
		if ee.Priority != "" {
			scope.SetTag("priority", ee.Priority)
		}
		for key, value := range ee.Context {
			scope.SetExtra(key, value)
		}
		sentry.CaptureException(ee.Err)
	})
}

// Init starts Sentry and installs the error reporter. Disabled telemetry is
// a no-op.
func Init(settings *conf.TelemetrySettings, version string) error {
	if !settings.Enabled {
		return nil
	}
	if settings.DSN == "" {
		return fmt.Errorf("telemetry is enabled but telemetry.dsn is empty")
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              settings.DSN,
		Release:          version,
		AttachStacktrace: true,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize sentry: %w", err)
	}

	errors.SetReporter(sentryReporter{})
	return nil
}

// Flush drains buffered events before shutdown.
func Flush() {
	sentry.Flush(flushTimeout)
}
