package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"bazaarly-core/config"
	"bazaarly-core/internal/adapter/smtp"

	httpHandler "bazaarly-core/internal/adapter/http/handler"
	pgStorage "bazaarly-core/internal/adapter/storage/postgres"
	redisStorage "bazaarly-core/internal/adapter/storage/redis"
	"bazaarly-core/internal/core/ports"
	"bazaarly-core/internal/service"
	"bazaarly-core/pkg/logger"
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
		Msg("Starting Bazaarly Core")

	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt.secret is required (set BZL_JWT_SECRET)")
	}

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
	walletRepo := pgStorage.NewWalletRepo(pool)
	ledgerRepo := pgStorage.NewLedgerRepo(pool)
	challengeRepo := pgStorage.NewChallengeRepo(pool)
	accountRepo := pgStorage.NewAccountRepo(pool)
	notificationRepo := pgStorage.NewNotificationRepo(pool)
	transactor := pgStorage.NewTransactor(pool)

	// Initialize core services
	hashSvc := service.NewBcryptHashService(12)
	tokenSvc := service.NewJWTTokenService(cfg.JWT.Secret, cfg.JWT.Expiry, cfg.JWT.Issuer)
	mailer := smtp.NewMailer(cfg.SMTP)

	// Initialize business services
	walletSvc := service.NewWalletService(
		walletRepo,
		ledgerRepo,
		notificationRepo,
		transactor,
		cfg.Wallet.Currency,
		log,
	)
	signupSvc := service.NewSignupService(
		challengeRepo,
		accountRepo,
		hashSvc,
		tokenSvc,
		mailer,
		notificationRepo,
		transactor,
		log,
	)
	authSvc := service.NewAuthService(accountRepo, hashSvc, tokenSvc, log)

	// Initialize rate limit store
	rateLimitStore := redisStorage.NewRateLimitStore(rdb)

	// Initialize health checkers
	pgHealth := pgStorage.NewHealthCheck(pool)
	redisHealth := redisStorage.NewHealthCheck(rdb)

	// Setup Gin router with all routes
	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		SignupSvc:      signupSvc,
		AuthSvc:        authSvc,
		WalletSvc:      walletSvc,
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
