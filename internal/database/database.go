package database

import (
	"log/slog"

	"hobbyhub/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the process-wide connection used by the handlers.
var DB *gorm.DB

// Open connects to the SQLite file at path (":memory:" for a private in-memory database)
// and migrates the schema.
func Open(path string, logLevel logger.LogLevel) (*gorm.DB, error) {
	// glebarez/sqlite is a pure Go driver, no CGO required
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:         logger.Default.LogMode(logLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "open database %s", path)
	}

	if path == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "access sql.DB")
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		return nil, errors.Wrap(err, "migrate database")
	}
	return db, nil
}

// InitDB opens the database at path and installs it as DB.
func InitDB(path string, logLevel logger.LogLevel) error {
	db, err := Open(path, logLevel)
	if err != nil {
		return err
	}
	DB = db
	slog.Info("Database connected and migrated", "path", path)
	return nil
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}
