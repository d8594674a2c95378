package database

import (
	"fmt"
	"log"
	"taskmind/config"
	"taskmind/models"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// migrated lists every persisted model; AutoMigrate runs them in order.
var migrated = []interface{}{
	&models.Feedback{},
	&models.HistoryEntry{},
	&models.KnowledgeItem{},
	&models.FineTuneRun{},
	&models.Setting{},
}

// InitDB opens the SQLite database named by config.Settings.DatabaseURL,
// applies pool settings and PRAGMAs, runs migrations and assigns the package DB.
func InitDB() error {
	db, err := Open(config.Settings)
	if err != nil {
		return err
	}
	DB = db

	log.Println("Database initialized successfully")
	return nil
}

// Open builds a configured *gorm.DB from settings without touching the package DB.
func Open(settings *config.Config) (*gorm.DB, error) {
	logLevel := logger.Silent
	if settings.LogLevel == "DEBUG" {
		logLevel = logger.Info
	}

	pragmas := sqlitePragmas(settings)
	dsn := buildSQLiteDSN(settings.DatabaseURL, pragmas)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: newTracingLogger(
			logger.New(log.New(log.Writer(), "\r\n", log.LstdFlags), logger.Config{LogLevel: logLevel}),
			time.Duration(settings.SQLiteSlowQueryMS)*time.Millisecond,
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	poolLimitsFrom(settings).apply(sqlDB)

	// Repeated on the open connection for database files created before the
	// DSN carried pragmas.
	for _, p := range pragmas {
		db.Exec("PRAGMA " + p.name + " = " + p.value)
	}

	if err := db.AutoMigrate(migrated...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// OpenMemory opens a private in-memory database with all tables migrated.
// Each call gets its own database.
func OpenMemory() (*gorm.DB, error) {
	settings := config.Default()
	settings.DatabaseURL = "file::memory:"
	settings.SQLitePragmasEnabled = false
	settings.SQLiteMaxOpenConns = 1
	settings.SQLiteMaxIdleConns = 1
	settings.SQLiteConnMaxIdleSec = 0
	return Open(settings)
}

// CloseDB closes the database connection and releases resources
func CloseDB() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	log.Println("Closing database connection...")
	return sqlDB.Close()
}
