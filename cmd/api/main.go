package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cambiototal/config"
	httpHandler "cambiototal/internal/adapter/http/handler"
	"cambiototal/internal/adapter/market"
	"cambiototal/internal/adapter/storage/credfile"
	pgStorage "cambiototal/internal/adapter/storage/postgres"
	redisStorage "cambiototal/internal/adapter/storage/redis"
	"cambiototal/internal/core/ports"
	"cambiototal/internal/service"
	"cambiototal/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)

	log.Info().
		Str("mode", cfg.Server.Mode).
		Int("port", cfg.Server.Port).
		Msg("Starting CambioTotal API")

	ctx := context.Background()

	// Initialize PostgreSQL pool
	pool, err := pgStorage.NewPool(ctx, cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()
	log.Info().Msg("PostgreSQL connected")

	// Initialize Redis client
	rdb, err := redisStorage.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()
	log.Info().Msg("Redis connected")

	// Initialize repositories
	userRepo := pgStorage.NewUserRepo(pool)
	fiatRepo := pgStorage.NewFiatTransactionRepo(pool)
	cryptoRepo := pgStorage.NewCryptoTransactionRepo(pool)
	settingsRepo := pgStorage.NewSettingsRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Credentials file (second half of the split user store)
	credStore := credfile.NewStore(cfg.Credentials.Path)

	// Market data provider backed by the Redis rate cache
	rateCache := redisStorage.NewRateCache(rdb)
	rateProvider := market.NewCachedProvider(cfg.Market, rateCache, log)

	// Session token signing: explicit secret wins, otherwise fall back to
	// the cookie signing key stored in the credentials file.
	jwtSecret := cfg.JWT.Secret
	jwtExpiry := cfg.JWT.Expiry
	if jwtSecret == "" {
		cookie, err := credStore.CookieConfig()
		if err != nil || cookie.Key == "" {
			log.Fatal().Err(err).Msg("No JWT secret configured and no cookie key in credentials file")
		}
		jwtSecret = cookie.Key
		if cookie.ExpiryDays > 0 {
			jwtExpiry = time.Duration(cookie.ExpiryDays) * 24 * time.Hour
		}
	}

	// Initialize core services
	hashSvc := service.NewBcryptHashService()
	tokenSvc := service.NewJWTTokenService(jwtSecret, jwtExpiry, cfg.JWT.Issuer)

	// Initialize business services
	authSvc := service.NewAuthService(credStore, userRepo, hashSvc, tokenSvc)
	settingsSvc := service.NewSettingsService(settingsRepo)
	ledgerSvc := service.NewLedgerService(fiatRepo, cryptoRepo, rateProvider, settingsSvc, log)
	reportingSvc := service.NewReportingService(fiatRepo, cryptoRepo)
	userSvc := service.NewUserService(userRepo, fiatRepo, cryptoRepo, credStore, transactor, hashSvc, log)

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		AuthSvc:        authSvc,
		LedgerSvc:      ledgerSvc,
		ReportingSvc:   reportingSvc,
		SettingsSvc:    settingsSvc,
		UserSvc:        userSvc,
		RateProvider:   rateProvider,
		TokenSvc:       tokenSvc,
		RateLimitStore: rateLimitStore,
		HealthCheckers: []ports.HealthChecker{pgHealth, redisHealth},
		Logger:         log,
	})

	// HTTP Server with graceful shutdown
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}
