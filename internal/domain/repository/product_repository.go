package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/domain/entity"
)

// ProductRepository defines the interface for product data operations.
// The backend owns stock arithmetic; clients never decrement locally.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products by their IDs in a single query (prevents N+1)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Search matches name or SKU against the query, capped at limit rows
	Search(ctx context.Context, query string, limit int) ([]entity.Product, error)
	GetImages(ctx context.Context, productID uuid.UUID) ([]entity.ProductImage, error)
	// AtomicDecrementBatch atomically decrements stock for multiple products.
	// Returns the product IDs that failed (insufficient stock) and any error.
	// If any product fails, the entire transaction is rolled back; this is
	// where a race between two carts claiming the same unit surfaces.
	AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) (failedIDs []uuid.UUID, err error)
	// AtomicIncrementBatch atomically increments stock for multiple products (for cancellations/returns)
	AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error
}

// BrandRepository defines the read interface for brand data
type BrandRepository interface {
	List(ctx context.Context) ([]entity.Brand, error)
}

// CategoryRepository defines the read interface for category data
type CategoryRepository interface {
	List(ctx context.Context) ([]entity.Category, error)
}
