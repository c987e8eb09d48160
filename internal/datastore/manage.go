package datastore

import (
	"fmt"
	"time"

	"github.com/gignote/gignote-go/internal/logging"
	"gorm.io/gorm"
)

// performAutoMigration runs GORM AutoMigrate for every model and logs the
// outcome. connectionInfo is a path or database name used for log context
// only, never credentials.
func performAutoMigration(db *gorm.DB, debug bool, dbType, connectionInfo string) error {
	migrationStart := time.Now()

	models := []any{
		&User{},
		&Profile{},
		&Venue{},
		&Artist{},
		&Show{},
		&Note{},
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to auto-migrate %s database: %w", dbType, err)
	}

	if debug {
		logging.Debug("Database migration completed",
			"db_type", dbType,
			"database", connectionInfo,
			"tables_migrated", len(models),
			"duration", time.Since(migrationStart))
	}

	return nil
}
