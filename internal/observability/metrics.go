// Package observability provides metrics collection for the alerting engine.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/veritrack/veritrack-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Alerting *metrics.AlertingMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all collectors.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	alertingMetrics, err := metrics.NewAlertingMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create alerting metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Alerting: alertingMetrics,
	}, nil
}

// Handler returns the HTTP handler serving the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.HTTPErrorOnError,
	})
}
