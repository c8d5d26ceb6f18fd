package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gymstore/pos-api/internal/config"
	"github.com/gymstore/pos-api/internal/domain/entity"
	domainRepo "github.com/gymstore/pos-api/internal/domain/repository"
	"github.com/gymstore/pos-api/internal/presentation/http/handler"
	"github.com/gymstore/pos-api/internal/presentation/http/middleware"
	"github.com/gymstore/pos-api/pkg/utils"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Auth     *handler.AuthHandler
	Cart     *handler.CartHandler
	Sale     *handler.SaleHandler
	Order    *handler.OrderHandler
	Product  *handler.ProductHandler
	Customer *handler.CustomerHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware())
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.RequestTimeout(deps.Cfg.Timeouts.Default))
	{
		// Public routes (no authentication required)
		registerAuthRoutes(v1, h)

		// Protected routes (authentication required)
		protected := v1.Group("")
		protected.Use(middleware.AuthMiddleware(deps.JWTManager))

		// Per-client rate limiter
		rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
			BurstSize:         deps.Cfg.RateLimit.Requests,
			CleanupInterval:   5 * time.Minute,
			EntryTTL:          10 * time.Minute,
		})
		protected.Use(rateLimiter.Middleware())

		registerProtectedRoutes(protected, h, deps)
	}

	return router
}

func registerAuthRoutes(v1 *gin.RouterGroup, h *Handlers) {
	auth := v1.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
	}
}

func registerProtectedRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	protected.GET("/profile", h.Auth.Profile)

	registerCartRoutes(protected, h)
	registerSaleRoutes(protected, h, deps)
	registerOrderRoutes(protected, h, deps)
	registerProductRoutes(protected, h)
	registerCustomerRoutes(protected, h, deps)
}

func registerCartRoutes(protected *gin.RouterGroup, h *Handlers) {
	carts := protected.Group("/carts")
	{
		carts.POST("", h.Cart.Create)
		carts.GET("/:id", h.Cart.Get)
		carts.DELETE("/:id", h.Cart.Destroy)
		carts.POST("/:id/items", h.Cart.AddItem)
		carts.PATCH("/:id/items/:productId", h.Cart.UpdateItem)
		carts.DELETE("/:id/items/:productId", h.Cart.RemoveItem)
		carts.PUT("/:id/discount", h.Cart.SetDiscount)
		carts.POST("/:id/search", h.Cart.Search)
		carts.GET("/:id/search", h.Cart.SearchResults)
	}
}

func registerSaleRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotency := middleware.IdempotencyRequired(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
	})

	sales := protected.Group("/sales")
	{
		sales.GET("", h.Sale.List)
		// Sale submission is the money write; it requires an idempotency key
		sales.POST("", idempotency, h.Sale.Create)
		sales.GET("/:id", h.Sale.Get)
	}

	// Transfer reconciliation is admin-only
	reconciliation := sales.Group("")
	reconciliation.Use(middleware.RequireRole(entity.RoleAdmin))
	{
		reconciliation.GET("/pending-transfers", h.Sale.ListPendingTransfers)
		reconciliation.GET("/pending-transfers/count", h.Sale.PendingTransferCount)
		reconciliation.POST("/:id/confirm-transfer", h.Sale.ConfirmTransfer)
		reconciliation.POST("/:id/cancel-transfer", h.Sale.CancelTransfer)
	}
}

func registerOrderRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	idempotency := middleware.IdempotencyRequired(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
	})

	orders := protected.Group("/orders")
	{
		orders.GET("", h.Order.List)
		// Order intake claims stock; it requires an idempotency key
		orders.POST("", idempotency, h.Order.Create)
		orders.GET("/:id", h.Order.Get)
		orders.PATCH("/:id/status", h.Order.UpdateStatus)
		orders.POST("/:id/confirm", h.Order.Confirm)
		orders.POST("/:id/deliver", h.Order.Deliver)
		orders.POST("/:id/pickup", h.Order.Pickup)
		orders.POST("/:id/cancel", h.Order.Cancel)
	}
}

func registerProductRoutes(protected *gin.RouterGroup, h *Handlers) {
	products := protected.Group("/products")
	{
		products.GET("/search", h.Product.Search)
		products.GET("/:id", h.Product.Get)
		products.GET("/:id/images", h.Product.GetImages)
	}

	protected.GET("/brands", h.Product.ListBrands)
	protected.GET("/categories", h.Product.ListCategories)
}

func registerCustomerRoutes(protected *gin.RouterGroup, h *Handlers, deps *Deps) {
	// Directory writes honor an idempotency key when the client sends one,
	// but do not demand it the way the money writes do
	idempotency := middleware.Idempotency(middleware.IdempotencyConfig{
		Repo: deps.IdempotencyRepo,
	})

	customers := protected.Group("/customers")
	{
		customers.GET("", h.Customer.List)
		customers.POST("", idempotency, h.Customer.Create)
		customers.GET("/:id", h.Customer.Get)
		customers.PUT("/:id", idempotency, h.Customer.Update)
		customers.DELETE("/:id", h.Customer.Deactivate)
	}
}
