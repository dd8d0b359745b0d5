package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"storefront/internal/cache"
	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// In-memory repositories backing the handler tests

type fakeCategoryRepo struct {
	categories []*domain.Category
}

func (f *fakeCategoryRepo) Create(ctx context.Context, category *domain.Category) error {
	for _, existing := range f.categories {
		if existing.Name == category.Name {
			return repository.ErrCategoryAlreadyExists
		}
	}
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	if category.Products == nil {
		category.Products = []primitive.ObjectID{}
	}
	f.categories = append(f.categories, category)
	return nil
}

func (f *fakeCategoryRepo) List(ctx context.Context) ([]*domain.Category, error) {
	return f.categories, nil
}

func (f *fakeCategoryRepo) ListShowing(ctx context.Context) ([]*domain.Category, error) {
	showing := []*domain.Category{}
	for _, category := range f.categories {
		if category.Showing {
			showing = append(showing, category)
		}
	}
	return showing, nil
}

func (f *fakeCategoryRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	for _, category := range f.categories {
		if category.ID == id {
			return category, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	for _, category := range f.categories {
		if category.Name == name {
			return category, nil
		}
	}
	return nil, repository.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) Update(ctx context.Context, category *domain.Category) error {
	for i, existing := range f.categories {
		if existing.ID == category.ID {
			f.categories[i] = category
			return nil
		}
	}
	return repository.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for i, existing := range f.categories {
		if existing.ID == id {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return repository.ErrCategoryNotFound
}

func (f *fakeCategoryRepo) PushProduct(ctx context.Context, categoryID, productID primitive.ObjectID) error {
	for _, category := range f.categories {
		if category.ID == categoryID {
			category.Products = append(category.Products, productID)
			return nil
		}
	}
	return repository.ErrCategoryNotFound
}

type fakeProductRepo struct {
	products []*domain.Product
}

func (f *fakeProductRepo) Create(ctx context.Context, product *domain.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	f.products = append(f.products, product)
	return nil
}

func (f *fakeProductRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	for _, product := range f.products {
		if product.ID == id {
			return product, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (f *fakeProductRepo) Update(ctx context.Context, product *domain.Product) error {
	for i, existing := range f.products {
		if existing.ID == product.ID {
			f.products[i] = product
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (f *fakeProductRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	for i, existing := range f.products {
		if existing.ID == id {
			f.products = append(f.products[:i], f.products[i+1:]...)
			return nil
		}
	}
	return repository.ErrProductNotFound
}

func (f *fakeProductRepo) newestFirst(categoryID primitive.ObjectID) []*domain.Product {
	matched := []*domain.Product{}
	for i := len(f.products) - 1; i >= 0; i-- {
		if f.products[i].CategoryID == categoryID {
			matched = append(matched, f.products[i])
		}
	}
	return matched
}

func (f *fakeProductRepo) ListByCategory(ctx context.Context, categoryID primitive.ObjectID, page, pageSize int) ([]*domain.Product, int64, error) {
	matched := f.newestFirst(categoryID)
	total := int64(len(matched))

	start := (page - 1) * pageSize
	if start >= len(matched) {
		return []*domain.Product{}, total, nil
	}
	end := start + pageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

func (f *fakeProductRepo) FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]*domain.Product, error) {
	return f.newestFirst(categoryID), nil
}

func passthrough(next http.Handler) http.Handler {
	return next
}

func newCatalogRouter(t *testing.T) (chi.Router, *fakeCategoryRepo, *fakeProductRepo) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cacheStore := cache.New(client, zap.NewNop())

	categoryRepo := &fakeCategoryRepo{}
	productRepo := &fakeProductRepo{}
	catalog := service.NewCatalogService(categoryRepo, productRepo, cacheStore, zap.NewNop())
	handler := NewCatalogHandler(catalog, categoryRepo, productRepo, zap.NewNop())

	router := chi.NewRouter()
	handler.RegisterRoutes(router, passthrough, passthrough)
	return router, categoryRepo, productRepo
}

func doJSON(t *testing.T, router chi.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func createTestCategory(t *testing.T, router chi.Router, name string) *domain.Category {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/categories", map[string]interface{}{
		"name":        name,
		"description": "a category",
		"image":       "/images/cat.jpeg",
		"showing":     true,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("category creation returned %d: %s", rec.Code, rec.Body.String())
	}
	category := &domain.Category{}
	if err := json.Unmarshal(rec.Body.Bytes(), category); err != nil {
		t.Fatalf("failed to decode category: %v", err)
	}
	return category
}

func createTestProduct(t *testing.T, router chi.Router, name, categoryID string) *domain.Product {
	t.Helper()
	payload := map[string]interface{}{
		"name":          name,
		"description":   "a product",
		"price":         49.99,
		"with_shipping": "yes",
	}
	if categoryID != "" {
		payload["category_id"] = categoryID
	}
	rec := doJSON(t, router, http.MethodPost, "/api/products", payload)
	if rec.Code != http.StatusCreated {
		t.Fatalf("product creation returned %d: %s", rec.Code, rec.Body.String())
	}
	product := &domain.Product{}
	if err := json.Unmarshal(rec.Body.Bytes(), product); err != nil {
		t.Fatalf("failed to decode product: %v", err)
	}
	return product
}

// Feature: storefront, Property 9: Paginated category listing over HTTP
func TestListCategoryProductsPaginated(t *testing.T) {
	router, _, _ := newCatalogRouter(t)

	category := createTestCategory(t, router, "Shoes")
	names := []string{"First", "Second", "Third", "Fourth", "Fifth"}
	for _, name := range names {
		createTestProduct(t, router, name, category.ID.Hex())
	}

	rec := doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/categories/%s/products?page=2&limit=2", category.ID.Hex()), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var page service.ProductPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if page.TotalProducts != 5 {
		t.Errorf("total = %d, want 5", page.TotalProducts)
	}
	if len(page.Products) != 2 {
		t.Fatalf("page size = %d, want 2", len(page.Products))
	}
	// Newest first: page 2 with limit 2 carries the third and fourth most
	// recent products.
	if page.Products[0].Name != "Third" || page.Products[1].Name != "Second" {
		t.Errorf("page 2 = [%s, %s], want [Third, Second]",
			page.Products[0].Name, page.Products[1].Name)
	}

	// Existing clients read these exact keys; decoding through the struct
	// alone would not catch a renamed tag.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(rec.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to decode raw page: %v", err)
	}
	for _, key := range []string{"products", "totalProducts"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response body is missing the %q key", key)
		}
	}
}

func TestListCategoryProductsUnpaginatedUsesSnapshot(t *testing.T) {
	router, _, productRepo := newCatalogRouter(t)

	category := createTestCategory(t, router, "Hats")
	createTestProduct(t, router, "Beanie", category.ID.Hex())
	createTestProduct(t, router, "Fedora", category.ID.Hex())

	rec := doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/categories/%s/products", category.ID.Hex()), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	products := []*domain.Product{}
	if err := json.Unmarshal(rec.Body.Bytes(), &products); err != nil {
		t.Fatalf("expected a flat product array, got: %s", rec.Body.String())
	}
	if len(products) != 2 {
		t.Fatalf("expected 2 products, got %d", len(products))
	}
	if products[0].Name != "Fedora" {
		t.Errorf("expected newest product first, got %s", products[0].Name)
	}

	// The snapshot is now cached: a product added behind the cache's back is
	// not visible until the TTL expires.
	extra := &domain.Product{Name: "Bowler", Price: 10, WithShipping: domain.ShippingYes, CategoryID: category.ID}
	if err := productRepo.Create(context.Background(), extra); err != nil {
		t.Fatalf("failed to add product: %v", err)
	}

	rec = doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/categories/%s/products", category.ID.Hex()), nil)
	products = nil
	if err := json.Unmarshal(rec.Body.Bytes(), &products); err != nil {
		t.Fatalf("failed to decode snapshot: %v", err)
	}
	if len(products) != 2 {
		t.Errorf("snapshot should still hold 2 products inside the TTL, got %d", len(products))
	}
}

func TestListCategoryProductsUnknownCategory(t *testing.T) {
	router, _, _ := newCatalogRouter(t)

	rec := doJSON(t, router, http.MethodGet,
		fmt.Sprintf("/api/categories/%s/products?page=1&limit=10", primitive.NewObjectID().Hex()), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown category should not error, got %d", rec.Code)
	}

	var page service.ProductPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if len(page.Products) != 0 || page.TotalProducts != 0 {
		t.Errorf("expected empty page and zero total, got %d products and total %d",
			len(page.Products), page.TotalProducts)
	}
}

func TestListCategoryProductsMalformedID(t *testing.T) {
	router, _, _ := newCatalogRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/categories/not-an-id/products", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", rec.Code)
	}
}

func TestListProductsDefaultsToPrincipalCategory(t *testing.T) {
	router, categoryRepo, _ := newCatalogRouter(t)

	// Products created without a category land in the principal category
	createTestProduct(t, router, "Loose One", "")
	createTestProduct(t, router, "Loose Two", "")

	rec := doJSON(t, router, http.MethodGet, "/api/products", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var page service.ProductPage
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("failed to decode page: %v", err)
	}
	if page.TotalProducts != 2 {
		t.Errorf("total = %d, want 2", page.TotalProducts)
	}

	if _, err := categoryRepo.FindByName(context.Background(), service.PrincipalCategoryName); err != nil {
		t.Error("listing products should have bootstrapped the principal category")
	}
}

func TestCreateProductValidation(t *testing.T) {
	router, _, _ := newCatalogRouter(t)

	tests := []struct {
		name    string
		payload map[string]interface{}
	}{
		{
			name: "missing shipping token",
			payload: map[string]interface{}{
				"name": "P", "description": "d", "price": 10,
			},
		},
		{
			name: "unrecognized shipping token",
			payload: map[string]interface{}{
				"name": "P", "description": "d", "price": 10, "with_shipping": "maybe",
			},
		},
		{
			name: "discount above price",
			payload: map[string]interface{}{
				"name": "P", "description": "d", "price": 10, "discounted_price": 20, "with_shipping": "yes",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPost, "/api/products", tt.payload)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}

	// The Arabic shipping tokens are accepted and stored in canonical form
	rec := doJSON(t, router, http.MethodPost, "/api/products", map[string]interface{}{
		"name": "P", "description": "d", "price": 10, "with_shipping": "نعم",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("arabic shipping token should be accepted, got %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.Product
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("failed to decode product: %v", err)
	}
	if created.WithShipping != domain.ShippingYes {
		t.Fatalf("expected shipping token normalized to %q, got %q", domain.ShippingYes, created.WithShipping)
	}
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	router, _, _ := newCatalogRouter(t)

	createTestCategory(t, router, "Shoes")
	rec := doJSON(t, router, http.MethodPost, "/api/categories", map[string]interface{}{
		"name":        "Shoes",
		"description": "again",
		"image":       "/images/cat.jpeg",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 for duplicate category name, got %d", rec.Code)
	}
}

func TestCreateProductUnknownCategory(t *testing.T) {
	router, _, _ := newCatalogRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/products", map[string]interface{}{
		"name":          "Orphan",
		"description":   "d",
		"price":         10,
		"with_shipping": "yes",
		"category_id":   primitive.NewObjectID().Hex(),
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown category, got %d: %s", rec.Code, rec.Body.String())
	}
}
