// Package app wires the configured collaborators into a runnable engine:
// database, repositories, mailer, metrics and the alerting orchestrator.
package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/veritrack/veritrack-go/internal/alerting"
	"github.com/veritrack/veritrack-go/internal/conf"
	"github.com/veritrack/veritrack-go/internal/datastore"
	"github.com/veritrack/veritrack-go/internal/datastore/repository"
	"github.com/veritrack/veritrack-go/internal/email"
	"github.com/veritrack/veritrack-go/internal/logger"
	"github.com/veritrack/veritrack-go/internal/observability"
)

// App holds the assembled components shared by the CLI entry points.
type App struct {
	Settings *conf.Settings
	Log      logger.Logger
	DB       *gorm.DB
	Alerts   repository.AlertRepository
	Metrics  *observability.Metrics
	Engine   *alerting.Engine
}

// New opens the database and builds the engine with all its collaborators.
func New(settings *conf.Settings, log logger.Logger) (*App, error) {
	db, err := datastore.Open(&settings.Database)
	if err != nil {
		return nil, err
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return nil, err
	}

	mailer, err := email.NewMailer(&settings.Email, log.Module("email"))
	if err != nil {
		return nil, err
	}

	alerts := repository.NewAlertRepository(db)
	corpus := repository.NewCorpusRepository(db)
	auth := repository.NewAuthRepository(db)

	alertLog := log.Module("alerting")
	evaluator := alerting.NewEvaluator(corpus, alertLog, metrics.Alerting)
	notifier := alerting.NewNotifier(alerts, corpus, auth, mailer, alerting.NotifierConfig{
		RecipientCacheTTL: settings.Alerting.RecipientCacheTTL.Std(),
		EmailsPerMinute:   settings.Alerting.EmailsPerMinute,
	}, alertLog, metrics.Alerting)
	engine := alerting.NewEngine(alerts, evaluator, notifier, &settings.Alerting, alertLog, metrics.Alerting)

	return &App{
		Settings: settings,
		Log:      log,
		DB:       db,
		Alerts:   alerts,
		Metrics:  metrics,
		Engine:   engine,
	}, nil
}

// Close releases the database connection.
func (a *App) Close() error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access database handle: %w", err)
	}
	return sqlDB.Close()
}
