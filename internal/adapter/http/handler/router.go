package handler

import (
	"bazaarly-core/internal/adapter/http/middleware"
	redisStore "bazaarly-core/internal/adapter/storage/redis"
	"bazaarly-core/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	SignupSvc      ports.SignupService
	AuthSvc        ports.AuthService
	WalletSvc      ports.WalletService
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

	// Health check pings PostgreSQL and Redis
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

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.SignupSvc, deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/signup", rl("auth_signup"), authHandler.Signup)
		auth.POST("/verify-otp", rl("auth_otp"), authHandler.VerifyOtp)
		auth.POST("/resend-otp", rl("auth_otp"), authHandler.ResendOtp)
		auth.POST("/signin", rl("auth_signin"), authHandler.Signin)
		auth.GET("/me", jwtAuth, authHandler.Me)
	}

	// --- JWT-authenticated routes ---
	walletHandler := NewWalletHandler(deps.WalletSvc)
	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("", rl("wallet"), walletHandler.GetWallet)
		wallet.POST("/deposit", rl("wallet"), walletHandler.Deposit)
		wallet.POST("/withdraw", rl("wallet"), walletHandler.Withdraw)
		wallet.GET("/transactions", rl("wallet"), walletHandler.ListTransactions)
	}

	return r
}
