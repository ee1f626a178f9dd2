// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"negoce/internal/domain/auth"
	"negoce/internal/domain/catalog/product"
	"negoce/internal/domain/catalog/unit"
	"negoce/internal/domain/ledger"
	"negoce/internal/domain/pricing/conversion"
	"negoce/internal/domain/pricing/promotion"
	"negoce/internal/domain/pricing/tier"
	"negoce/internal/domain/sales"
	"negoce/internal/infrastructure/http/v1/handlers"
	"negoce/internal/infrastructure/http/v1/middleware"
	"negoce/internal/infrastructure/storage/postgres"
	"negoce/pkg/logger"
)

// RouterConfig holds dependencies for the API router.
type RouterConfig struct {
	Pool    *pgxpool.Pool
	Logger  *logger.Logger
	Version string

	JWTValidator middleware.JWTValidator
	AuthService  *auth.Service

	Audit *postgres.AuditService

	Units       *unit.Service
	Products    *product.Service
	Conversions *conversion.Service
	Tiers       *tier.Service
	Promotions  *promotion.Service
	Ledger      *ledger.Service
	Sales       *sales.Service
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool, cfg.Version)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	api := router.Group("/api/v1")
	{
		// Auth: login is public, account management requires a token and
		// user administration requires the admin flag.
		authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
		publicAuth := api.Group("/auth")
		protectedAuth := api.Group("/auth")
		protectedAuth.Use(middleware.Auth(cfg.JWTValidator))
		adminAuth := api.Group("/auth")
		adminAuth.Use(middleware.Auth(cfg.JWTValidator), middleware.RequireAdmin())
		authHandler.RegisterRoutes(publicAuth, protectedAuth, adminAuth)

		protected := api.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		// Catalog
		unitHandler := handlers.NewUnitHandler(base, cfg.Units, cfg.Audit)
		unitHandler.RegisterRoutes(protected.Group("/units"))

		productHandler := handlers.NewProductHandler(base, cfg.Products, cfg.Audit)
		productHandler.RegisterRoutes(protected.Group("/products"))

		// Pricing: conversions, tiers and price resolution live under products.
		conversionHandler := handlers.NewConversionHandler(base, cfg.Conversions, cfg.Products, cfg.Audit)
		conversionHandler.RegisterRoutes(protected.Group("/products"))

		tierHandler := handlers.NewTierHandler(base, cfg.Tiers, cfg.Products, cfg.Audit)
		tierHandler.RegisterRoutes(protected.Group("/products"))

		promotionHandler := handlers.NewPromotionHandler(base, cfg.Promotions, cfg.Audit)
		promotionHandler.RegisterRoutes(protected.Group("/promotions"))

		// Stock ledger
		stockHandler := handlers.NewStockHandler(base, cfg.Ledger)
		stockHandler.RegisterRoutes(protected.Group("/stock"))

		// Sales
		saleHandler := handlers.NewSaleHandler(base, cfg.Sales)
		saleHandler.RegisterRoutes(protected.Group("/sales"))
	}

	return router
}
