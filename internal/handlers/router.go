package handlers

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"fitcoin-challenge/internal/auth"
	"fitcoin-challenge/internal/metrics"
	"fitcoin-challenge/internal/middleware"
	"fitcoin-challenge/internal/services"
)

// RouterDeps is everything the HTTP layer needs
type RouterDeps struct {
	SQLDB          *sql.DB
	Denylist       auth.Denylist
	RateLimiter    *middleware.RateLimiter
	AllowedOrigins []string

	Auth       *services.AuthService
	Users      *services.UserService
	Payouts    *services.PayoutService
	Challenges *services.ChallengeService
	Wagers     *services.WagerService
	Funds      *services.FundService
	Admin      *services.AdminService
	Settings   *services.SettingsService
}

// NewRouter builds the gin engine with every route mounted
func NewRouter(d RouterDeps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.Metrics())

	if len(d.AllowedOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     d.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Mutating routes are throttled; reads are not.
	limit := func(c *gin.Context) { c.Next() }
	if d.RateLimiter != nil {
		limit = d.RateLimiter.Handler()
	}

	authHandler := NewAuthHandler(d.Auth)
	userHandler := NewUserHandler(d.Users, d.Payouts)
	challengeHandler := NewChallengeHandler(d.Challenges)
	wagerHandler := NewWagerHandler(d.Wagers)
	fundHandler := NewFundHandler(d.Funds)
	adminHandler := NewAdminHandler(d.Admin, d.Wagers, d.Funds, d.Settings)
	settingsHandler := NewSettingsHandler(d.Settings)

	router.GET("/health", Health)
	if d.SQLDB != nil {
		router.GET("/ready", Ready(d.SQLDB))
	}
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Public routes
	public := router.Group("/api")
	{
		public.POST("/auth/signup", limit, authHandler.SignUp)
		public.POST("/auth/signin", limit, authHandler.SignIn)
		public.POST("/auth/password-reset", limit, authHandler.RequestPasswordReset)
		public.POST("/auth/password-reset/confirm", limit, authHandler.ResetPassword)

		public.GET("/settings", settingsHandler.GetSettings)
		public.GET("/leaderboard", userHandler.Leaderboard)
		public.GET("/users", userHandler.Directory)
		public.GET("/users/:id", userHandler.GetUser)
		public.GET("/users/:id/payout", userHandler.GetUserPayout)

		public.GET("/challenges", challengeHandler.ListChallenges)
		public.GET("/challenges/recent", challengeHandler.ListRecentChallenges)
		public.GET("/challenges/user/:id", challengeHandler.GetUserChallenge)

		public.GET("/wagers", wagerHandler.ListRecentWagers)
		public.GET("/wagers/:id", wagerHandler.GetWager)
		public.GET("/wagers/share/:code", wagerHandler.GetWagerByShareCode)
	}

	// Authenticated routes
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware(d.Denylist))
	{
		api.POST("/auth/signout", authHandler.SignOut)
		api.GET("/auth/me", authHandler.Me)
		api.PUT("/auth/password", limit, authHandler.UpdatePassword)

		api.GET("/me/challenge", challengeHandler.GetMyChallenge)
		api.GET("/me/wagers", wagerHandler.ListMyWagers)
		api.GET("/me/transactions", userHandler.GetMyTransactions)
		api.GET("/me/payout", userHandler.GetMyPayout)
		api.GET("/me/fund-requests", fundHandler.ListMyRequests)
		api.PUT("/me/avatar", limit, userHandler.UpdateAvatar)

		api.POST("/challenges", limit, challengeHandler.CreateChallenge)
		api.POST("/wagers", limit, wagerHandler.CreateWager)
		api.POST("/wagers/:id/counter", limit, wagerHandler.CounterWager)
		api.POST("/wagers/:id/cancel", limit, wagerHandler.CancelWager)
		api.POST("/fund-requests", limit, fundHandler.RequestFunds)
	}

	// Admin routes
	admin := router.Group("/api/admin")
	admin.Use(auth.AuthMiddleware(d.Denylist))
	admin.Use(adminHandler.AdminMiddleware())
	{
		admin.GET("/stats", adminHandler.GetLedgerStats)
		admin.POST("/challenges/:id/resolve", adminHandler.ResolveChallenge)
		admin.GET("/fund-requests", adminHandler.ListPendingFundRequests)
		admin.POST("/fund-requests/:id/approve", adminHandler.ApproveFundRequest)
		admin.POST("/fund-requests/:id/reject", adminHandler.RejectFundRequest)
		admin.PUT("/settings/challenge-end-date", adminHandler.SetChallengeEndDate)
		admin.PUT("/users/:id/admin", adminHandler.SetAdmin)
	}

	return router
}
