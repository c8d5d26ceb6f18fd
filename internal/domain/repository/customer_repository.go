package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/domain/entity"
	"github.com/gymstore/pos-api/pkg/pagination"
)

// CustomerRepository defines the interface for the registered-customer directory
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListActive returns active customers for attaching a known buyer to a sale
	ListActive(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error)
}
