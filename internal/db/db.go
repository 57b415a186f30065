package db

import (
	"fmt"
	"time"

	"foodgram/internal/config"
	"foodgram/internal/logger"
	"foodgram/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init connects to Postgres, migrates the schema and seeds reference data.
func Init(cfg config.App) {
	var err error
	DB, err = Open(cfg.DatabaseURL, cfg.IsProduction())
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	logger.Info("Database connection established")

	if err := Migrate(DB); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migration completed")

	if cfg.Seed {
		Seed(DB)
	}
}

// Open opens a gorm handle whose SQL logging goes through zap.
func Open(dsn string, production bool) (*gorm.DB, error) {
	level := gormlogger.Warn
	if !production {
		level = gormlogger.Info
	}
	gl := gormlogger.New(zap.NewStdLog(logger.Logger), gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  level,
		IgnoreRecordNotFoundError: true,
	})
	return gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gl})
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close() {
	if DB == nil {
		return
	}
	sqlDB, err := DB.DB()
	if err != nil {
		logger.Warn("Failed to retrieve sql.DB", zap.Error(err))
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Warn("Error closing the database connection", zap.Error(err))
	}
}
