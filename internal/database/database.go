package database

import (
	"fmt"

	"livsoul/internal/config"
	"livsoul/internal/logging"
	"livsoul/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the postgres connection and runs migrations. The handle
// is returned to the caller; there is no package-level connection.
func Connect(dbConf config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	// Create our custom GORM logger
	gormLogger := logging.NewGormZapLogger(log)
	gormLogger.LogLevel = logger.Warn

	// TranslateError turns driver errors into gorm sentinels such as
	// ErrDuplicatedKey, which the repository layer matches on.
	db, err := gorm.Open(postgres.Open(dbConf.DSN()), &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Info("Database connection established successfully.")

	if err := runMigrations(db, log); err != nil {
		return nil, err
	}
	return db, nil
}

func runMigrations(db *gorm.DB, log *zap.Logger) error {
	// GORM's AutoMigrate will create tables, columns, and foreign keys.
	// It will NOT create composite or partial indexes, so we handle
	// those separately.
	err := db.AutoMigrate(
		&models.User{},
		&models.Prediction{},
		&models.MedicalRecord{},
	)
	if err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}
	log.Info("Database migrations completed successfully.")

	indexes := []string{
		// History queries: newest-first per owner, active rows only.
		`CREATE INDEX IF NOT EXISTS idx_predictions_history ON predictions (user_id, created_at DESC) WHERE is_active = true;`,
		// Tier statistics over the active population.
		`CREATE INDEX IF NOT EXISTS idx_predictions_active_risk ON predictions (result_risk_level) WHERE is_active = true;`,
		// Patient timeline: newest-first, finalized or amended records.
		`CREATE INDEX IF NOT EXISTS idx_records_timeline ON medical_records (patient_id, created_at DESC) WHERE status IN ('finalized', 'amended');`,
	}
	for _, idx := range indexes {
		if err := db.Exec(idx).Error; err != nil {
			return fmt.Errorf("failed to create custom index: %w", err)
		}
	}
	log.Info("Custom indexes ensured successfully.")
	return nil
}
