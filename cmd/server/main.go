// Package main is the entry point for the negoce API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"negoce/internal/domain/auth"
	"negoce/internal/domain/catalog/product"
	"negoce/internal/domain/catalog/unit"
	"negoce/internal/domain/ledger"
	"negoce/internal/domain/pricing/conversion"
	"negoce/internal/domain/pricing/promotion"
	"negoce/internal/domain/pricing/tier"
	"negoce/internal/domain/sales"
	v1 "negoce/internal/infrastructure/http/v1"
	"negoce/internal/infrastructure/storage/postgres"
	"negoce/internal/infrastructure/storage/postgres/auth_repo"
	"negoce/internal/infrastructure/storage/postgres/catalog_repo"
	"negoce/internal/infrastructure/storage/postgres/ledger_repo"
	"negoce/internal/infrastructure/storage/postgres/pricing_repo"
	"negoce/internal/infrastructure/storage/postgres/sales_repo"
	"negoce/pkg/logger"
)

const version = "1.0.0"

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting negoce server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	poolCfg := postgres.DefaultPoolConfig(dsn)
	if maxConns := getEnvInt("DB_MAX_CONNS", 0); maxConns > 0 {
		poolCfg.MaxConns = int32(maxConns)
	}

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}

	// --- Repositories ---
	unitRepo := catalog_repo.NewUnitRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	conversionRepo := pricing_repo.NewConversionRepo(txManager)
	tierRepo := pricing_repo.NewTierRepo(txManager)
	promotionRepo := pricing_repo.NewPromotionRepo(txManager)
	movementRepo := ledger_repo.NewMovementRepo(txManager)
	saleRepo := sales_repo.NewSaleRepo(txManager)
	userRepo := auth_repo.NewUserRepo(txManager)

	// --- Domain services ---
	unitService := unit.NewService(unitRepo)
	productService := product.NewService(productRepo)
	conversionService := conversion.NewService(conversionRepo)
	tierService := tier.NewService(tierRepo)
	promotionService := promotion.NewService(promotionRepo)
	ledgerService := ledger.NewService(movementRepo, conversionService, productRepo, txManager)
	salesService := sales.NewService(
		saleRepo,
		productRepo,
		conversionService,
		tierService,
		promotionService,
		ledgerService,
		txManager,
	)

	// --- Auth ---
	jwtSecret := mustEnv("JWT_SECRET")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))
	authService := auth.NewService(userRepo, jwtService, auth.DefaultServiceConfig())

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:         pool.Unwrap(),
		Logger:       log,
		Version:      version,
		JWTValidator: jwtService,
		AuthService:  authService,
		Audit:        auditService,
		Units:        unitService,
		Products:     productService,
		Conversions:  conversionService,
		Tiers:        tierService,
		Promotions:   promotionService,
		Ledger:       ledgerService,
		Sales:        salesService,
	})

	// --- HTTP server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}
