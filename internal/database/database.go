package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"fitcoin-challenge/internal/models"
	"fitcoin-challenge/pkg/logger"
)

var DB *gorm.DB

// Connect establishes a connection to the PostgreSQL database
func Connect(dsn string) error {
	db, err := Open(postgres.Open(dsn))
	if err != nil {
		return err
	}

	DB = db
	logger.Log.Info("Database connection established successfully")
	return nil
}

// Open opens a gorm handle with the settings every store uses. Unique
// violations surface as gorm.ErrDuplicatedKey.
func Open(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Error),
		DisableForeignKeyConstraintWhenMigrating: true,
		TranslateError:                           true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Models lists every persisted table in migration order.
func Models() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Challenge{},
		&models.Wager{},
		&models.FundRequest{},
		&models.SystemSetting{},
		&models.Transaction{},
	}
}

// AutoMigrate runs automatic migrations for all models
func AutoMigrate() error {
	return Migrate(DB)
}

// Migrate creates or updates the schema and seeds the settings rows.
func Migrate(db *gorm.DB) error {
	for _, model := range Models() {
		if err := db.AutoMigrate(model); err != nil {
			return fmt.Errorf("migrate %T: %w", model, err)
		}
	}

	if err := SeedSettings(db); err != nil {
		return err
	}

	logger.Log.Info("Database migrations completed successfully")
	return nil
}

// SeedSettings inserts the settings rows the ledger expects, leaving existing values untouched.
func SeedSettings(db *gorm.DB) error {
	for _, key := range []string{models.SettingTotalEurosInSystem, models.SettingChallengeEndDate} {
		setting := models.SystemSetting{Key: key}
		err := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoNothing: true,
		}).Create(&setting).Error
		if err != nil {
			return fmt.Errorf("seed setting %s: %w", key, err)
		}
	}
	return nil
}

// HealthCheck pings the underlying connection pool.
func HealthCheck(ctx context.Context, sqlDB *sql.DB) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		logger.Log.Warn("database health check failed", zap.Error(err))
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// GetDB returns the database instance
func GetDB() *gorm.DB {
	return DB
}
