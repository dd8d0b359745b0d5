package transport

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"storefront/internal/domain"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Default page sizes per call site. The storefront product grid loads four
// at a time, the category product listing ten.
const (
	DefaultProductsLimit         = 4
	DefaultCategoryProductsLimit = 10
)

// CreateCategoryRequest is the category creation payload
type CreateCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description" validate:"required"`
	Image       string `json:"image" validate:"required"`
	Showing     bool   `json:"showing"`
}

// ReviewPayload is one review in a product payload
type ReviewPayload struct {
	Text   string   `json:"text" validate:"required"`
	Images []string `json:"images"`
}

// LandingBlockPayload is one landing-page block in a product payload
type LandingBlockPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// ProductRequest is the product create/update payload
type ProductRequest struct {
	Name            string                `json:"name" validate:"required"`
	Description     string                `json:"description" validate:"required"`
	Price           float64               `json:"price" validate:"gte=0"`
	DiscountedPrice *float64              `json:"discounted_price" validate:"omitempty,gte=0"`
	Colors          []string              `json:"colors"`
	Sizes           []string              `json:"sizes"`
	Rating          float64               `json:"rating" validate:"gte=0,lte=5"`
	Reviews         []ReviewPayload       `json:"reviews" validate:"dive"`
	Images          []string              `json:"images"`
	WithShipping    string                `json:"with_shipping" validate:"required,oneof=yes no نعم لا"`
	LandingPage     []LandingBlockPayload `json:"landing_page"`
	CategoryID      string                `json:"category_id"`
}

// CatalogHandler handles HTTP requests for categories and products
type CatalogHandler struct {
	catalog    service.CatalogService
	categories repository.CategoryRepository
	products   repository.ProductRepository
	logger     *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(
	catalog service.CatalogService,
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	logger *zap.Logger,
) *CatalogHandler {
	return &CatalogHandler{
		catalog:    catalog,
		categories: categories,
		products:   products,
		logger:     logger,
	}
}

// RegisterRoutes registers all catalog routes
func (h *CatalogHandler) RegisterRoutes(r chi.Router, authMiddleware, adminMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
		r.Get("/{id}/products", h.ListCategoryProducts)

		r.Group(func(r chi.Router) {
			r.Use(authMiddleware)
			r.Use(adminMiddleware)
			r.Patch("/{id}", h.UpdateCategory)
			r.Delete("/{id}", h.DeleteCategory)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.ListProducts)
		r.Post("/", h.CreateProduct)
		r.Get("/{id}", h.GetProduct)
		r.Put("/{id}", h.UpdateProduct)
		r.Delete("/{id}", h.DeleteProduct)
	})
}

// ListCategories returns the visible categories with a few sample products
// each, served through the cache.
func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.VisibleCategoriesWithSamples(r.Context())
	if err != nil {
		h.logger.Error("Failed to list categories", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, categories)
}

// CreateCategory creates a new category
func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := &domain.Category{
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Showing:     req.Showing,
	}

	if err := h.categories.Create(r.Context(), category); err != nil {
		if errors.Is(err, repository.ErrCategoryAlreadyExists) {
			middleware.RespondWithError(w, http.StatusConflict, "category with this name already exists")
			return
		}
		h.logger.Error("Failed to create category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("Category created",
		zap.String("category_id", category.ID.Hex()),
		zap.String("name", category.Name),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, category)
}

// UpdateCategory updates an existing category
func (h *CatalogHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, r, "id")
	if !ok {
		return
	}

	var req CreateCategoryRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := &domain.Category{
		ID:          id,
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Showing:     req.Showing,
	}

	if err := h.categories.Update(r.Context(), category); err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			middleware.RespondWithError(w, http.StatusNotFound, "Category not found")
		case errors.Is(err, repository.ErrCategoryAlreadyExists):
			middleware.RespondWithError(w, http.StatusConflict, "category with this name already exists")
		default:
			h.logger.Error("Failed to update category", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		}
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, category)
}

// DeleteCategory removes a category
func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, r, "id")
	if !ok {
		return
	}

	if err := h.categories.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.logger.Error("Failed to delete category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Category deleted"})
}

// ListCategoryProducts returns a category's products. With page or limit
// query parameters it returns a paginated page with the total count;
// without them it returns the full list through the per-category cache.
func (h *CatalogHandler) ListCategoryProducts(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, r, "id")
	if !ok {
		return
	}

	query := r.URL.Query()
	if query.Get("page") == "" && query.Get("limit") == "" {
		products, err := h.catalog.ProductsByCategoryCached(r.Context(), id)
		if err != nil {
			h.logger.Error("Failed to list category products", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		middleware.RespondWithJSON(w, http.StatusOK, products)
		return
	}

	page, limit := parsePagination(r, DefaultCategoryProductsLimit)

	result, err := h.catalog.ListProductsByCategory(r.Context(), id, page, limit)
	if err != nil {
		h.logger.Error("Failed to list category products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// ListProducts returns a page of the principal category's products
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	principal, err := h.catalog.PrincipalCategory(r.Context())
	if err != nil {
		h.logger.Error("Failed to resolve principal category", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	page, limit := parsePagination(r, DefaultProductsLimit)

	result, err := h.catalog.ListProductsByCategory(r.Context(), principal.ID, page, limit)
	if err != nil {
		h.logger.Error("Failed to list products", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

// GetProduct returns a single product
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, r, "id")
	if !ok {
		return
	}

	product, err := h.products.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to get product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// CreateProduct creates a new product under its category, defaulting to the
// principal category when none is given
func (h *CatalogHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}

	if err := h.catalog.CreateProduct(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.logger.Error("Failed to create product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	h.logger.Info("Product created",
		zap.String("product_id", product.ID.Hex()),
		zap.String("category_id", product.CategoryID.Hex()),
	)
	middleware.RespondWithJSON(w, http.StatusCreated, product)
}

// UpdateProduct replaces a product's fields
func (h *CatalogHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, r, "id")
	if !ok {
		return
	}

	product, ok := h.decodeProduct(w, r)
	if !ok {
		return
	}
	product.ID = id

	if product.CategoryID.IsZero() {
		existing, err := h.products.FindByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrProductNotFound) {
				middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
				return
			}
			h.logger.Error("Failed to load product", zap.Error(err))
			middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}
		product.CategoryID = existing.CategoryID
	}

	if err := h.products.Update(r.Context(), product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to update product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product
func (h *CatalogHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectID(w, r, "id")
	if !ok {
		return
	}

	if err := h.products.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.Error("Failed to delete product", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Product deleted"})
}

func (h *CatalogHandler) decodeProduct(w http.ResponseWriter, r *http.Request) (*domain.Product, bool) {
	var req ProductRequest
	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return nil, false
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return nil, false
	}

	if req.DiscountedPrice != nil && *req.DiscountedPrice > req.Price {
		middleware.RespondWithValidationErrors(w, []middleware.ValidationError{{
			Field:   "DiscountedPrice",
			Message: "must be less than or equal to the price",
		}})
		return nil, false
	}

	var categoryID primitive.ObjectID
	if req.CategoryID != "" {
		parsed, err := primitive.ObjectIDFromHex(req.CategoryID)
		if err != nil {
			middleware.RespondWithError(w, http.StatusBadRequest, "invalid category id")
			return nil, false
		}
		categoryID = parsed
	}

	reviews := make([]domain.Review, 0, len(req.Reviews))
	for _, review := range req.Reviews {
		reviews = append(reviews, domain.Review{
			Text:      review.Text,
			Images:    review.Images,
			CreatedAt: time.Now(),
		})
	}

	landing := make([]domain.LandingBlock, 0, len(req.LandingPage))
	for _, block := range req.LandingPage {
		landing = append(landing, domain.LandingBlock{
			Title:       block.Title,
			Description: block.Description,
			Image:       block.Image,
		})
	}

	return &domain.Product{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		DiscountedPrice: req.DiscountedPrice,
		Colors:          req.Colors,
		Sizes:           req.Sizes,
		Rating:          req.Rating,
		Reviews:         reviews,
		Images:          req.Images,
		WithShipping:    domain.NormalizeShipping(req.WithShipping),
		LandingPage:     landing,
		CategoryID:      categoryID,
	}, true
}

// parseObjectID reads a hex object id from the URL, responding with a 400 on
// malformed input.
func parseObjectID(w http.ResponseWriter, r *http.Request, param string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid id")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parsePagination reads page and limit query parameters, falling back to
// page 1 and the call site's default limit.
func parsePagination(r *http.Request, defaultLimit int) (int, int) {
	page := 1
	limit := defaultLimit

	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	return page, limit
}
