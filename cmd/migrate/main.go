package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"

	"fitcoin-challenge/internal/config"
	"fitcoin-challenge/internal/database"
	"fitcoin-challenge/internal/repository"
	"fitcoin-challenge/internal/services"
	"fitcoin-challenge/pkg/logger"
)

func main() {
	promote := flag.String("promote", "", "name of an existing user to make admin")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitLogger(cfg.LoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	sqlDB, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		logger.Log.Fatal("Failed to open database", zap.Error(err))
	}
	defer sqlDB.Close()

	if err := database.HealthCheck(context.Background(), sqlDB); err != nil {
		logger.Log.Fatal("Database unreachable", zap.Error(err))
	}

	db, err := database.Open(postgres.New(postgres.Config{Conn: sqlDB}))
	if err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}

	logger.Log.Info("Applying schema migrations")
	if err := database.Migrate(db); err != nil {
		logger.Log.Fatal("Failed to apply migrations", zap.Error(err))
	}
	logger.Log.Info("Migrations applied")

	if *promote != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		admins := services.NewAdminService(repository.NewRepository(db))
		if err := admins.PromoteByName(ctx, *promote); err != nil {
			logger.Log.Fatal("Failed to promote user", zap.String("name", *promote), zap.Error(err))
		}
	}
}
