package repository

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gorm_logger "gorm.io/gorm/logger"

	"github.com/veritrack/veritrack-go/internal/datastore/entities"
)

// setupTestDB creates an in-memory SQLite database for repository tests.
// Each test gets its own named database; shared-cache mode with a single
// connection ensures all operations see the same in-memory state.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=ON", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gorm_logger.Default.LogMode(gorm_logger.Silent),
	})
	require.NoError(t, err, "failed to open in-memory database")

	sqlDB, err := db.DB()
	require.NoError(t, err, "failed to get sql.DB")
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	err = db.AutoMigrate(
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
	require.NoError(t, err, "failed to migrate schema")
	return db
}

func int64Ptr(v int64) *int64 {
	return &v
}

func uintPtr(v uint) *uint {
	return &v
}
