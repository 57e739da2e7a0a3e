// Package api exposes the admin HTTP surface: manual cycle triggering, the
// execution audit trail, health and metrics.
package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/veritrack/veritrack-go/internal/alerting"
	"github.com/veritrack/veritrack-go/internal/datastore/repository"
	"github.com/veritrack/veritrack-go/internal/logger"
	"github.com/veritrack/veritrack-go/internal/observability"
)

const (
	defaultExecutionsLimit = 50
	maxExecutionsLimit     = 200
)

// Controller wires the admin endpoints onto an echo server.
type Controller struct {
	echo    *echo.Echo
	engine  *alerting.Engine
	alerts  repository.AlertRepository
	metrics *observability.Metrics
	log     logger.Logger
}

// New creates the Controller and registers its routes. Metrics may be nil,
// in which case /metrics is not served.
func New(engine *alerting.Engine, alerts repository.AlertRepository, m *observability.Metrics, log logger.Logger) *Controller {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	c := &Controller{
		echo:    e,
		engine:  engine,
		alerts:  alerts,
		metrics: m,
		log:     log,
	}

	group := e.Group("/api/v1")
	group.POST("/alerts/process", c.ProcessAlerts)
	group.GET("/alerts/executions", c.ListExecutions)
	group.GET("/health", c.Health)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	return c
}

// Start begins serving on the given address and blocks until shutdown.
func (c *Controller) Start(listen string) error {
	return c.echo.Start(listen)
}

// Shutdown gracefully stops the server.
func (c *Controller) Shutdown(ctx context.Context) error {
	return c.echo.Shutdown(ctx)
}

// Handler exposes the echo server as an http.Handler for tests.
func (c *Controller) Handler() http.Handler {
	return c.echo
}

// ProcessAlerts runs one evaluation cycle and returns its execution record.
func (c *Controller) ProcessAlerts(ctx echo.Context) error {
	execution, err := c.engine.ProcessAlerts(ctx.Request().Context())
	if err != nil {
		c.log.Error("manual alert cycle failed", logger.Error(err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to process alerts",
		})
	}
	return ctx.JSON(http.StatusOK, execution)
}

// ListExecutions returns execution records newest-first with pagination.
func (c *Controller) ListExecutions(ctx echo.Context) error {
	limit := defaultExecutionsLimit
	if param := ctx.QueryParam("limit"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil || parsed < 1 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid limit"})
		}
		limit = min(parsed, maxExecutionsLimit)
	}
	offset := 0
	if param := ctx.QueryParam("offset"); param != "" {
		parsed, err := strconv.Atoi(param)
		if err != nil || parsed < 0 {
			return ctx.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid offset"})
		}
		offset = parsed
	}

	executions, total, err := c.alerts.ListExecutions(ctx.Request().Context(), limit, offset)
	if err != nil {
		c.log.Error("failed to list executions", logger.Error(err))
		return ctx.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to list executions",
		})
	}
	return ctx.JSON(http.StatusOK, map[string]any{
		"executions": executions,
		"total":      total,
		"limit":      limit,
		"offset":     offset,
	})
}

// Health reports liveness.
func (c *Controller) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
