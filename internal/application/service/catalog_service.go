package service

import (
	"context"

	"github.com/gymstore/pos-api/internal/domain/entity"
	"github.com/gymstore/pos-api/internal/domain/repository"
	"github.com/gymstore/pos-api/internal/infrastructure/cache"
)

// CatalogService serves the brand and category filter lists. Both change
// rarely and live in their own cache partitions.
type CatalogService struct {
	brandRepo    repository.BrandRepository
	categoryRepo repository.CategoryRepository
	cache        *cache.Store
}

// NewCatalogService creates a new catalog service
func NewCatalogService(
	brandRepo repository.BrandRepository,
	categoryRepo repository.CategoryRepository,
	cacheStore *cache.Store,
) *CatalogService {
	return &CatalogService{
		brandRepo:    brandRepo,
		categoryRepo: categoryRepo,
		cache:        cacheStore,
	}
}

// ListBrands returns all brands, name-sorted
func (s *CatalogService) ListBrands(ctx context.Context) ([]entity.Brand, error) {
	if cached, ok := s.cache.Get(cache.DomainBrands, "all"); ok {
		return cached.([]entity.Brand), nil
	}

	brands, err := s.brandRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.DomainBrands, "all", brands)
	return brands, nil
}

// ListCategories returns all categories, name-sorted
func (s *CatalogService) ListCategories(ctx context.Context) ([]entity.Category, error) {
	if cached, ok := s.cache.Get(cache.DomainCategories, "all"); ok {
		return cached.([]entity.Category), nil
	}

	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(cache.DomainCategories, "all", categories)
	return categories, nil
}
