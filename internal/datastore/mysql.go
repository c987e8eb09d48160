package datastore

import (
	"fmt"

	"github.com/gignote/gignote-go/internal/conf"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// MySQLStore implements DataStore for MySQL
type MySQLStore struct {
	DataStore
	Settings *conf.Settings
}

// Open sets up the MySQL database connection and runs migrations.
func (store *MySQLStore) Open() error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		store.Settings.Database.MySQL.Username, store.Settings.Database.MySQL.Password,
		store.Settings.Database.MySQL.Host, store.Settings.Database.MySQL.Port,
		store.Settings.Database.MySQL.Database)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:         createGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open MySQL database: %w", err)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "MySQL", store.Settings.Database.MySQL.Database)
}

// Close closes the underlying MySQL connection pool.
func (store *MySQLStore) Close() error {
	if store.DB == nil {
		return nil
	}
	sqlDB, err := store.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to access database connection: %w", err)
	}
	return sqlDB.Close()
}
