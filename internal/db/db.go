// Package db provides database connectivity and operations
package db

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"filedropbox/internal/db/models"
)

// Options represents database connection configuration options
type Options struct {
	// Path is the SQLite database file path
	Path string
	// LogLevel controls gorm query logging
	LogLevel gormlogger.LogLevel
}

// New opens the completion ledger database, enables write-ahead logging,
// and runs migrations. The parent directory is created if missing.
func New(opts Options) (*gorm.DB, error) {
	if opts.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if opts.LogLevel == 0 {
		opts.LogLevel = gormlogger.Warn
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(opts.Path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(opts.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", opts.Path, err)
	}

	// WAL lets concurrent finalize inserts serialize without blocking reads
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Upload{},
	)
}
