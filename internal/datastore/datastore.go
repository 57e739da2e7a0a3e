// Package datastore opens the database connection and runs schema migration
// for the alerting engine's tables.
package datastore

import (
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/veritrack/veritrack-go/internal/conf"
	"github.com/veritrack/veritrack-go/internal/datastore/entities"
)

// Open connects to the configured database and migrates the schema.
func Open(settings *conf.DatabaseSettings) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	}

	var db *gorm.DB
	var err error
	switch settings.Type {
	case "sqlite":
		dsn := settings.Path + "?_foreign_keys=ON"
		db, err = gorm.Open(sqlite.Open(dsn), config)
	case "mysql":
		db, err = gorm.Open(mysql.Open(settings.DSN), config)
	default:
		return nil, fmt.Errorf("unsupported database type %q", settings.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", settings.Type, err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate creates or updates the schema for all engine-owned and
// collaborator tables.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&entities.Organisation{},
		&entities.User{},
		&entities.Narrative{},
		&entities.Topic{},
		&entities.NarrativeTopic{},
		&entities.Video{},
		&entities.Claim{},
		&entities.ClaimNarrative{},
		&entities.AlertRule{},
		&entities.AlertTrigger{},
		&entities.AlertExecution{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
