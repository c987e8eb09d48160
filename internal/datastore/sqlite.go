package datastore

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gignote/gignote-go/internal/conf"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SQLiteStore implements DataStore for SQLite
type SQLiteStore struct {
	DataStore
	Settings *conf.Settings
}

// Open sets up the SQLite database connection and runs migrations.
func (store *SQLiteStore) Open() error {
	absoluteFilePath := store.Settings.Database.SQLite.Path
	// URI and in-memory databases have no path to resolve
	if !strings.HasPrefix(absoluteFilePath, "file:") && !strings.Contains(absoluteFilePath, ":memory:") {
		dir, fileName := filepath.Split(absoluteFilePath)
		basePath := conf.GetBasePath(dir)
		absoluteFilePath = filepath.Join(basePath, fileName)
	}

	db, err := gorm.Open(sqlite.Open(absoluteFilePath), &gorm.Config{
		Logger:         createGormLogger(),
		TranslateError: true,
	})
	if err != nil {
		return fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite does not enforce foreign keys unless asked to
	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store.DB = db
	return performAutoMigration(db, store.Settings.Debug, "SQLite", absoluteFilePath)
}

// Close is a no-op for SQLite, the connection pool is managed by GORM.
func (store *SQLiteStore) Close() error {
	return nil
}
