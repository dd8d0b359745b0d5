package service

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	// PrincipalCategoryName is the reserved name of the default category.
	// Products created without an explicit category land here.
	PrincipalCategoryName = "Principal Category"

	principalCategoryDescription = "Default principal category"
	principalCategoryImage       = "/images/principal-category.jpeg"

	// CategorySampleSize is how many recent products are attached to each
	// category in the storefront category listing.
	CategorySampleSize = 4
)

// ProductPage is one page of a category's products plus the unpaginated
// total.
type ProductPage struct {
	Products      []*domain.Product `json:"products"`
	TotalProducts int64             `json:"totalProducts"`
}

// CategoryWithSamples is a visible category together with a few of its most
// recent products.
type CategoryWithSamples struct {
	ID          primitive.ObjectID `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	Image       string             `json:"image"`
	Products    []*domain.Product  `json:"products"`
}

// CatalogService answers the storefront's catalog queries with a cache-aside
// policy and guarantees the principal category exists.
type CatalogService interface {
	PrincipalCategory(ctx context.Context) (*domain.Category, error)
	ListProductsByCategory(ctx context.Context, categoryID primitive.ObjectID, page, limit int) (*ProductPage, error)
	VisibleCategoriesWithSamples(ctx context.Context) ([]*CategoryWithSamples, error)
	ProductsByCategoryCached(ctx context.Context, categoryID primitive.ObjectID) ([]*domain.Product, error)
	CreateProduct(ctx context.Context, product *domain.Product) error
}

type catalogService struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	cache      *cache.Cache
	logger     *zap.Logger
}

// NewCatalogService creates a new instance of CatalogService
func NewCatalogService(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	cacheStore *cache.Cache,
	logger *zap.Logger,
) CatalogService {
	return &catalogService{
		categories: categories,
		products:   products,
		cache:      cacheStore,
		logger:     logger,
	}
}

// PrincipalCategory returns the reserved default category, creating it on
// first use. Concurrent creators race on the unique name index: the loser
// re-reads the winner's document, so exactly one survives.
func (s *catalogService) PrincipalCategory(ctx context.Context) (*domain.Category, error) {
	category, err := s.categories.FindByName(ctx, PrincipalCategoryName)
	if err == nil {
		return category, nil
	}
	if !errors.Is(err, repository.ErrCategoryNotFound) {
		return nil, fmt.Errorf("failed to look up principal category: %w", err)
	}

	category = &domain.Category{
		Name:        PrincipalCategoryName,
		Description: principalCategoryDescription,
		Image:       principalCategoryImage,
		Products:    []primitive.ObjectID{},
	}

	err = s.categories.Create(ctx, category)
	if err == nil {
		s.logger.Info("Created principal category",
			zap.String("category_id", category.ID.Hex()),
		)
		return category, nil
	}
	if errors.Is(err, repository.ErrCategoryAlreadyExists) {
		// Lost the creation race, the other writer's document wins.
		return s.categories.FindByName(ctx, PrincipalCategoryName)
	}

	return nil, fmt.Errorf("failed to create principal category: %w", err)
}

// ListProductsByCategory returns one page of a category's products, most
// recently created first, with the total count of the category's products.
// An unknown category yields an empty page and a zero total, not an error.
func (s *catalogService) ListProductsByCategory(ctx context.Context, categoryID primitive.ObjectID, page, limit int) (*ProductPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}

	products, total, err := s.products.ListByCategory(ctx, categoryID, page, limit)
	if err != nil {
		return nil, err
	}

	return &ProductPage{
		Products:      products,
		TotalProducts: total,
	}, nil
}

// VisibleCategoriesWithSamples lists the categories shown on the storefront,
// each carrying up to CategorySampleSize recent products. Results are served
// from the cache when a snapshot is present; otherwise they are derived from
// the store and the snapshot is written back with a bounded TTL.
func (s *catalogService) VisibleCategoriesWithSamples(ctx context.Context) ([]*CategoryWithSamples, error) {
	cached := []*CategoryWithSamples{}
	if s.cache.GetJSON(ctx, cache.CategoriesKey, &cached) {
		return cached, nil
	}

	categories, err := s.categories.ListShowing(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]*CategoryWithSamples, 0, len(categories))
	for _, category := range categories {
		samples, _, err := s.products.ListByCategory(ctx, category.ID, 1, CategorySampleSize)
		if err != nil {
			return nil, err
		}
		result = append(result, &CategoryWithSamples{
			ID:          category.ID,
			Name:        category.Name,
			Description: category.Description,
			Image:       category.Image,
			Products:    samples,
		})
	}

	s.cache.SetJSON(ctx, cache.CategoriesKey, result, cache.CategoriesTTL)

	return result, nil
}

// ProductsByCategoryCached returns all products of one category under the
// per-category cache key. Invalidation is TTL-only: a product mutation can
// leave this snapshot stale for up to the TTL window.
func (s *catalogService) ProductsByCategoryCached(ctx context.Context, categoryID primitive.ObjectID) ([]*domain.Product, error) {
	key := cache.CategoryProductsKey(categoryID.Hex())

	cached := []*domain.Product{}
	if s.cache.GetJSON(ctx, key, &cached) {
		return cached, nil
	}

	products, err := s.products.FindByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, key, products, cache.CategoryProductsTTL)

	return products, nil
}

// CreateProduct inserts a product and records its id on the owning
// category. A product without a category is bucketed under the principal
// category.
func (s *catalogService) CreateProduct(ctx context.Context, product *domain.Product) error {
	if product.CategoryID.IsZero() {
		principal, err := s.PrincipalCategory(ctx)
		if err != nil {
			return err
		}
		product.CategoryID = principal.ID
	} else {
		if _, err := s.categories.FindByID(ctx, product.CategoryID); err != nil {
			return err
		}
	}

	if err := s.products.Create(ctx, product); err != nil {
		return err
	}

	if err := s.categories.PushProduct(ctx, product.CategoryID, product.ID); err != nil {
		return fmt.Errorf("product %s created but not recorded on category: %w", product.ID.Hex(), err)
	}

	return nil
}
