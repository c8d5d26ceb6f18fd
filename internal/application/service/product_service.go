package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gymstore/pos-api/internal/domain/entity"
	"github.com/gymstore/pos-api/internal/domain/repository"
	"github.com/gymstore/pos-api/internal/infrastructure/cache"
)

// ProductService serves catalog reads through the products cache partition.
// This process does not administer the catalog; products are managed
// elsewhere and only read (and stock-adjusted) here, which is why a short
// TTL is an acceptable staleness window.
type ProductService struct {
	productRepo repository.ProductRepository
	cache       *cache.Store
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, cacheStore *cache.Store) *ProductService {
	return &ProductService{productRepo: productRepo, cache: cacheStore}
}

// Search matches products by name or SKU. Results are cached per query so
// an operator re-typing the same prefix within the TTL hits memory.
func (s *ProductService) Search(ctx context.Context, query string, limit int) ([]entity.Product, error) {
	query = strings.TrimSpace(query)
	key := fmt.Sprintf("search:%s:%d", strings.ToLower(query), limit)

	if cached, ok := s.cache.Get(cache.DomainProducts, key); ok {
		return cached.([]entity.Product), nil
	}

	products, err := s.productRepo.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.DomainProducts, key, products)
	return products, nil
}

// GetByID returns a product or nil when it does not exist. Lookups feed
// cart lines, so the cached copy carries the stock snapshot the cart
// guards against.
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	key := "id:" + id.String()
	if cached, ok := s.cache.Get(cache.DomainProducts, key); ok {
		return cached.(*entity.Product), nil
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, nil
	}

	s.cache.Set(cache.DomainProducts, key, product)
	return product, nil
}

// GetProduct returns a product, failing with a not-found error when absent
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, entity.ErrProductNotFound
	}
	return product, nil
}

// GetImages returns the image set for a product detail view. Images load
// on demand, not with the search hit list.
func (s *ProductService) GetImages(ctx context.Context, productID uuid.UUID) ([]entity.ProductImage, error) {
	key := "images:" + productID.String()
	if cached, ok := s.cache.Get(cache.DomainProducts, key); ok {
		return cached.([]entity.ProductImage), nil
	}

	images, err := s.productRepo.GetImages(ctx, productID)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.DomainProducts, key, images)
	return images, nil
}
