package handler

import (
	"cambiototal/internal/adapter/http/middleware"
	redisStore "cambiototal/internal/adapter/storage/redis"
	"cambiototal/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LedgerSvc      ports.LedgerService
	ReportingSvc   ports.ReportingService
	SettingsSvc    ports.SettingsService
	UserSvc        ports.UserService
	RateProvider   ports.RateProvider
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep — verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	// API v1 routes
	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- Authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	ratesHandler := NewRatesHandler(deps.RateProvider)
	ledgerHandler := NewLedgerHandler(deps.LedgerSvc)
	dashboardHandler := NewDashboardHandler(deps.ReportingSvc)

	rates := v1.Group("/rates", jwtAuth)
	{
		rates.GET("/fiat", ratesHandler.FiatRate)
		rates.GET("/crypto", ratesHandler.CryptoPrices)
		rates.POST("/refresh", ratesHandler.Refresh)
	}

	fiat := v1.Group("/fiat", jwtAuth)
	{
		fiat.GET("/quote", ledgerHandler.QuoteFiat)
		fiat.POST("/transactions", rl("transactions"), ledgerHandler.SubmitFiat)
		fiat.GET("/transactions", ledgerHandler.ListFiat)
		fiat.GET("/dashboard", rl("dashboard"), dashboardHandler.FiatDashboard)
	}

	crypto := v1.Group("/crypto", jwtAuth)
	{
		crypto.GET("/quote", ledgerHandler.QuoteCrypto)
		crypto.POST("/transactions", rl("transactions"), ledgerHandler.SubmitCrypto)
		crypto.GET("/transactions", ledgerHandler.ListCrypto)
		crypto.GET("/dashboard", rl("dashboard"), dashboardHandler.CryptoDashboard)
	}

	// --- Admin routes ---
	adminHandler := NewAdminHandler(deps.SettingsSvc, deps.UserSvc)
	admin := v1.Group("/admin", jwtAuth, middleware.AdminOnly())
	{
		admin.GET("/settings", adminHandler.GetSettings)
		admin.PUT("/settings", adminHandler.UpdateSettings)
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users", adminHandler.CreateUser)
		admin.DELETE("/users/:username", adminHandler.DeleteUser)
		admin.GET("/transactions", dashboardHandler.Oversight)
	}

	return r
}
