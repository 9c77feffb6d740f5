package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"fitcoin-challenge/internal/auth"
	"fitcoin-challenge/internal/config"
	"fitcoin-challenge/internal/database"
	"fitcoin-challenge/internal/handlers"
	"fitcoin-challenge/internal/jobs"
	"fitcoin-challenge/internal/middleware"
	"fitcoin-challenge/internal/repository"
	"fitcoin-challenge/internal/services"
	"fitcoin-challenge/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := logger.InitLogger(cfg.LoggerConfig()); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	auth.InitJWT(cfg.App.JWTSecret, cfg.App.TokenTTL)

	// Connect to database
	if err := database.Connect(cfg.GetDSN()); err != nil {
		logger.Log.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Run migrations
	if err := database.AutoMigrate(); err != nil {
		logger.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	sqlDB, err := database.GetDB().DB()
	if err != nil {
		logger.Log.Fatal("Failed to get sql.DB", zap.Error(err))
	}

	// Token denylist. Without Redis, sign-out still succeeds but tokens stay
	// valid until they expire.
	var denylist auth.Denylist
	redisCtx, cancelRedis := context.WithTimeout(context.Background(), 3*time.Second)
	redisClient, err := auth.ConnectRedis(redisCtx, cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB)
	cancelRedis()
	if err != nil {
		logger.Log.Warn("Redis unavailable, token revocation disabled", zap.Error(err))
	} else {
		defer redisClient.Close()
		denylist = auth.NewRedisDenylist(redisClient)
	}

	// Initialize services
	repo := repository.NewRepository(database.GetDB())
	opts := services.DefaultOptions()
	opts.SignupBonus = cfg.Ledger.SignupBonus
	opts.FitcoinsPerEuro = cfg.Ledger.FitcoinsPerEuro
	opts.WagerFeedLimit = cfg.Ledger.WagerFeedLimit
	opts.ResetTokenTTL = cfg.App.ResetTokenTTL
	opts.PasswordMinLen = cfg.App.PasswordMinLen

	wagerService := services.NewWagerService(repo, opts)

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	stopCleanup := make(chan struct{})
	rateLimiter.StartCleanup(10*time.Minute, stopCleanup)

	router := handlers.NewRouter(handlers.RouterDeps{
		SQLDB:          sqlDB,
		Denylist:       denylist,
		RateLimiter:    rateLimiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Auth:           services.NewAuthService(repo, denylist, opts),
		Users:          services.NewUserService(repo),
		Payouts:        services.NewPayoutService(repo),
		Challenges:     services.NewChallengeService(repo),
		Wagers:         wagerService,
		Funds:          services.NewFundService(repo, opts),
		Admin:          services.NewAdminService(repo),
		Settings:       services.NewSettingsService(repo),
	})

	// Background jobs
	scheduler := jobs.NewScheduler()
	if err := scheduler.Register(cfg.Jobs.CloseBettingSpec, jobs.NewCloseBettingJob(wagerService)); err != nil {
		logger.Log.Fatal("Failed to schedule jobs", zap.Error(err))
	}
	scheduler.Start()

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info("Server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down server...")
	close(stopCleanup)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", zap.Error(err))
	}

	select {
	case <-scheduler.Stop().Done():
	case <-ctx.Done():
		logger.Log.Warn("Background jobs did not finish before shutdown")
	}

	logger.Log.Info("Server exited")
}
