package handler

import (
	"time"

	"campus-payment-ledger/internal/adapter/http/middleware"
	redisStore "campus-payment-ledger/internal/adapter/storage/redis"
	"campus-payment-ledger/internal/core/domain"
	"campus-payment-ledger/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	PaymentSvc     ports.PaymentService
	AdminSvc       ports.AdminService
	ReportingSvc   ports.ReportingService
	TokenSvc       ports.TokenService
	TokenTTL       time.Duration
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
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)

	paymentHandler := NewPaymentHandler(deps.PaymentSvc, deps.TokenTTL)
	walletHandler := NewWalletHandler(deps.PaymentSvc, deps.ReportingSvc)
	adminHandler := NewAdminHandler(deps.AdminSvc, deps.ReportingSvc)

	// --- Authenticated routes shared by students and merchants ---
	wallet := v1.Group("/wallet", jwtAuth)
	{
		wallet.GET("", rl("wallet"), walletHandler.GetBalance)
		wallet.POST("/recharge", rl("recharge"), middleware.RequireRole(domain.RoleStudent), walletHandler.Recharge)
	}
	v1.GET("/transactions", jwtAuth, rl("wallet"), walletHandler.ListTransactions)

	// --- Student routes ---
	v1.POST("/tokens", jwtAuth, middleware.RequireRole(domain.RoleStudent), rl("tokens"), paymentHandler.IssueToken)

	// --- Merchant routes ---
	v1.POST("/redeem", jwtAuth, middleware.RequireRole(domain.RoleMerchant), rl("redeem"), paymentHandler.Redeem)

	// --- Admin routes ---
	admin := v1.Group("/admin", jwtAuth, middleware.RequireRole(domain.RoleAdmin), rl("admin"))
	{
		admin.GET("/users", adminHandler.ListUsers)
		admin.POST("/users/:email/block", adminHandler.BlockUser)
		admin.POST("/users/:email/unblock", adminHandler.UnblockUser)
		admin.GET("/transactions", adminHandler.ListTransactions)
		admin.GET("/transactions/suspicious", adminHandler.ListSuspicious)
		admin.POST("/transactions/:id/reverse", adminHandler.ReverseTransaction)
		admin.POST("/transactions/:id/fraud", adminHandler.MarkFraud)
		admin.DELETE("/transactions/:id/fraud", adminHandler.ClearFraud)
		admin.GET("/audit", adminHandler.ListAuditLog)
	}

	return r
}
