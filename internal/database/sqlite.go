package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const sqliteScheme = "sqlite://"

// ConnectSQLite opens a SQLite database. It backs local development and tests.
func ConnectSQLite(path string) (*gorm.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite path must not be empty")
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}

	return db, nil
}

// Connect picks the driver from the URL: sqlite:// and file: URLs open SQLite,
// anything else is handed to PostgreSQL.
func Connect(url string) (*gorm.DB, error) {
	switch {
	case strings.HasPrefix(url, sqliteScheme):
		return ConnectSQLite(strings.TrimPrefix(url, sqliteScheme))
	case strings.HasPrefix(url, "file:"):
		return ConnectSQLite(url)
	default:
		return ConnectPostgres(url)
	}
}
