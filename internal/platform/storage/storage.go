package storage

import (
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"carevoice/internal/platform/errors"
)

// Open opens the SQLite database at dsn and migrates the voice history
// tables. An empty dsn defaults to ./data/carevoice.db.
func Open(dsn string) (*gorm.DB, error) {
	const op = "storage.Open"

	if dsn == "" {
		dsn = filepath.Join("data", "carevoice.db")
	}
	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrap(errors.KindStorage, op, "failed to create data directory", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(errors.KindStorage, op, "failed to open database", err)
	}

	if err := db.AutoMigrate(&VoiceTurn{}); err != nil {
		return nil, errors.Wrap(errors.KindStorage, op, "failed to migrate database", err)
	}
	return db, nil
}
