package datastore

import (
	"log"
	"os"
	"time"

	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold defines the duration after which a query is
// considered slow and logged at warn level.
const DefaultSlowQueryThreshold = 1 * time.Second

// createGormLogger configures and returns a new GORM logger instance.
func createGormLogger() gormlogger.Interface {
	return gormlogger.New(
		log.New(os.Stderr, "\r\n", log.LstdFlags),
		gormlogger.Config{
			SlowThreshold:             DefaultSlowQueryThreshold,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}
