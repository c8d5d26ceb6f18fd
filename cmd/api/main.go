package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gymstore/pos-api/internal/application/cart"
	"github.com/gymstore/pos-api/internal/application/service"
	"github.com/gymstore/pos-api/internal/config"
	"github.com/gymstore/pos-api/internal/infrastructure/cache"
	"github.com/gymstore/pos-api/internal/infrastructure/database"
	"github.com/gymstore/pos-api/internal/infrastructure/repository"
	"github.com/gymstore/pos-api/internal/presentation/http/handler"
	"github.com/gymstore/pos-api/internal/presentation/http/routes"
	"github.com/gymstore/pos-api/pkg/utils"
)

// searchDebounce is the keystroke settling window for cart-session search
const searchDebounce = 300 * time.Millisecond

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run auto-migrations
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Seed default data
	if err := database.SeedDefaultData(db); err != nil {
		log.Printf("Warning: Failed to seed default data: %v", err)
	}

	// Initialize JWT manager
	jwtManager := utils.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.ExpiryHours,
		cfg.JWT.RefreshExpiryHours,
	)

	// The read cache is built once here and injected everywhere
	cacheStore := cache.New(cfg.Cache.TTL)

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	brandRepo := repository.NewBrandRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	saleRepo := repository.NewSaleRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtManager)
	productService := service.NewProductService(productRepo, cacheStore)
	catalogService := service.NewCatalogService(brandRepo, categoryRepo, cacheStore)
	cartService := cart.NewService(productService, searchDebounce, cfg.Timeouts.Default)
	saleService := service.NewSaleService(cartService, saleRepo, productRepo, customerRepo, cacheStore, cfg.Timeouts.Extended)
	orderService := service.NewOrderService(orderRepo, productRepo, cacheStore)
	customerService := service.NewCustomerService(customerRepo)

	// Initialize handlers
	handlers := &routes.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Cart:     handler.NewCartHandler(cartService),
		Sale:     handler.NewSaleHandler(saleService),
		Order:    handler.NewOrderHandler(orderService),
		Product:  handler.NewProductHandler(productService, catalogService),
		Customer: handler.NewCustomerHandler(customerService),
	}

	// Setup routes
	router := routes.Setup(handlers, &routes.Deps{
		JWTManager:      jwtManager,
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
	})

	// Get port from environment or use default
	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
	log.Printf("Environment: %s", cfg.App.Env)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
		os.Exit(1)
	}
}
