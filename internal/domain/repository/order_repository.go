package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/domain/entity"
	"github.com/gymstore/pos-api/internal/domain/enum"
	"github.com/gymstore/pos-api/pkg/pagination"
)

// OrderRepository defines the interface for web-order data operations
type OrderRepository interface {
	Create(ctx context.Context, order *entity.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	GetByOrderNumber(ctx context.Context, orderNumber string) (*entity.Order, error)
	GetWithItems(ctx context.Context, id uuid.UUID) (*entity.Order, error)
	Update(ctx context.Context, order *entity.Order) error
	List(ctx context.Context, params *OrderFilterParams) ([]entity.Order, int64, error)
	// UpdateStatus applies a validated status change and appends the
	// transition event in the same transaction
	UpdateStatus(ctx context.Context, order *entity.Order, event *entity.OrderStatusEvent) error
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination   *pagination.PaginationParams
	Search       string
	Status       *enum.OrderStatus
	DeliveryType *enum.DeliveryType
	StartDate    *time.Time
	EndDate      *time.Time
	SortBy       string
	SortOrder    string
}
