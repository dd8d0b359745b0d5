package repository

import (
	"context"
	"fmt"
	"log"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/domain"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

var testDB *mongo.Database

func setupTestDB() (func(context.Context, ...testcontainers.TerminateOption) error, error) {
	ctx := context.Background()

	container, err := mongodb.Run(ctx, "mongo:7")
	if err != nil {
		return nil, err
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		return container.Terminate, err
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return container.Terminate, err
	}

	testDB = client.Database("storefront_test")
	if err := database.EnsureIndexes(ctx, testDB, zap.NewNop()); err != nil {
		return container.Terminate, err
	}

	return container.Terminate, nil
}

func TestMain(m *testing.M) {
	teardown, err := setupTestDB()
	if err != nil {
		log.Fatalf("could not start mongodb container: %v", err)
	}

	m.Run()

	if teardown != nil {
		if err := teardown(context.Background()); err != nil {
			log.Fatalf("could not teardown mongodb container: %v", err)
		}
	}
}

func freshCollection(t *testing.T, name string) *mongo.Collection {
	t.Helper()
	collection := testDB.Collection(name)
	t.Cleanup(func() {
		// Drop documents but keep the collection so its indexes survive
		if _, err := collection.DeleteMany(context.Background(), bson.M{}); err != nil {
			t.Errorf("failed to clear collection %s: %v", name, err)
		}
	})
	return collection
}

// The unique index on category names is what makes the lazy principal
// category bootstrap safe, so it gets a direct test.
func TestCategoryNameUniqueness(t *testing.T) {
	repo := NewCategoryRepository(freshCollection(t, database.CollectionCategories))
	ctx := context.Background()

	first := &domain.Category{Name: "Shoes", Description: "d", Image: "/i.jpeg"}
	if err := repo.Create(ctx, first); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	duplicate := &domain.Category{Name: "Shoes", Description: "other", Image: "/j.jpeg"}
	if err := repo.Create(ctx, duplicate); err != ErrCategoryAlreadyExists {
		t.Fatalf("expected ErrCategoryAlreadyExists, got %v", err)
	}

	found, err := repo.FindByName(ctx, "Shoes")
	if err != nil {
		t.Fatalf("find by name failed: %v", err)
	}
	if found.ID != first.ID {
		t.Fatal("the surviving document should be the first writer's")
	}
}

func TestCategoryPushProduct(t *testing.T) {
	repo := NewCategoryRepository(freshCollection(t, database.CollectionCategories))
	ctx := context.Background()

	category := &domain.Category{Name: "Hats", Description: "d", Image: "/i.jpeg"}
	if err := repo.Create(ctx, category); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	productID := primitive.NewObjectID()
	if err := repo.PushProduct(ctx, category.ID, productID); err != nil {
		t.Fatalf("push failed: %v", err)
	}

	found, err := repo.FindByID(ctx, category.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(found.Products) != 1 || found.Products[0] != productID {
		t.Fatalf("products = %v, want exactly [%s]", found.Products, productID.Hex())
	}

	if err := repo.PushProduct(ctx, primitive.NewObjectID(), productID); err != ErrCategoryNotFound {
		t.Fatalf("expected ErrCategoryNotFound for unknown category, got %v", err)
	}
}

func TestListByCategoryPaginationAndCount(t *testing.T) {
	repo := NewProductRepository(freshCollection(t, database.CollectionProducts))
	ctx := context.Background()
	categoryID := primitive.NewObjectID()

	const total = 7
	for i := 0; i < total; i++ {
		product := &domain.Product{
			Name:         fmt.Sprintf("Product %d", i),
			Price:        float64(i),
			WithShipping: domain.ShippingYes,
			CategoryID:   categoryID,
		}
		if err := repo.Create(ctx, product); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	// Another category's products stay out of both the page and the count
	other := &domain.Product{Name: "Other", WithShipping: domain.ShippingNo, CategoryID: primitive.NewObjectID()}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	page, count, err := repo.ListByCategory(ctx, categoryID, 2, 3)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if count != total {
		t.Errorf("count = %d, want %d", count, total)
	}
	if len(page) != 3 {
		t.Fatalf("page size = %d, want 3", len(page))
	}

	// Reverse insertion order: page 2 of size 3 holds products 3, 2, 1
	wantNames := []string{"Product 3", "Product 2", "Product 1"}
	for i, product := range page {
		if product.Name != wantNames[i] {
			t.Errorf("page[%d] = %s, want %s", i, product.Name, wantNames[i])
		}
	}

	// A page past the end is empty but still reports the full count
	empty, count, err := repo.ListByCategory(ctx, categoryID, 4, 3)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(empty) != 0 || count != total {
		t.Errorf("past-the-end page: len=%d count=%d, want 0 and %d", len(empty), count, total)
	}

	// Unknown category: empty page, zero count, no error
	none, count, err := repo.ListByCategory(ctx, primitive.NewObjectID(), 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(none) != 0 || count != 0 {
		t.Errorf("unknown category: len=%d count=%d, want 0 and 0", len(none), count)
	}
}

func TestUserUniqueEmailAndUsername(t *testing.T) {
	repo := NewUserRepository(freshCollection(t, database.CollectionUsers))
	ctx := context.Background()

	user := &domain.User{
		Name: "A", LastName: "B", Username: "shopper", Email: "a@example.com",
		PasswordHash: "hash", Role: domain.RoleUser,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	sameEmail := &domain.User{Username: "other", Email: "a@example.com", PasswordHash: "h", Role: domain.RoleUser}
	if err := repo.Create(ctx, sameEmail); err != ErrUserAlreadyExists {
		t.Fatalf("expected ErrUserAlreadyExists for duplicate email, got %v", err)
	}

	sameUsername := &domain.User{Username: "shopper", Email: "b@example.com", PasswordHash: "h", Role: domain.RoleUser}
	if err := repo.Create(ctx, sameUsername); err != ErrUserAlreadyExists {
		t.Fatalf("expected ErrUserAlreadyExists for duplicate username, got %v", err)
	}
}

func TestUserCartMergesQuantities(t *testing.T) {
	repo := NewUserRepository(freshCollection(t, database.CollectionUsers))
	ctx := context.Background()

	user := &domain.User{Username: "cartuser", Email: "cart@example.com", PasswordHash: "h", Role: domain.RoleUser}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	productID := primitive.NewObjectID()
	if err := repo.AddCartItem(ctx, user.ID, domain.CartItem{ProductID: productID, Quantity: 2}); err != nil {
		t.Fatalf("first add failed: %v", err)
	}
	if err := repo.AddCartItem(ctx, user.ID, domain.CartItem{ProductID: productID, Quantity: 3}); err != nil {
		t.Fatalf("second add failed: %v", err)
	}

	found, err := repo.FindByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if len(found.Cart) != 1 {
		t.Fatalf("cart lines = %d, want 1", len(found.Cart))
	}
	if found.Cart[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", found.Cart[0].Quantity)
	}

	if err := repo.RemoveCartItem(ctx, user.ID, productID); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	found, _ = repo.FindByID(ctx, user.ID)
	if len(found.Cart) != 0 {
		t.Errorf("cart should be empty after removal, has %d lines", len(found.Cart))
	}
}

func TestUserLockoutRoundTrip(t *testing.T) {
	repo := NewUserRepository(freshCollection(t, database.CollectionUsers))
	ctx := context.Background()

	user := &domain.User{Username: "lockme", Email: "lock@example.com", PasswordHash: "h", Role: domain.RoleUser}
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	deadline := time.Now().Add(15 * time.Minute).Truncate(time.Millisecond)
	if err := repo.RecordFailedLogin(ctx, user.ID, 5, &deadline); err != nil {
		t.Fatalf("record failed login failed: %v", err)
	}

	found, _ := repo.FindByID(ctx, user.ID)
	if found.FailedLoginAttempts != 5 {
		t.Errorf("attempts = %d, want 5", found.FailedLoginAttempts)
	}
	if found.LockUntil == nil || !found.Locked(time.Now()) {
		t.Fatal("user should be locked")
	}

	if err := repo.ResetLoginAttempts(ctx, user.ID); err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	found, _ = repo.FindByID(ctx, user.ID)
	if found.FailedLoginAttempts != 0 || found.LockUntil != nil {
		t.Error("reset should clear attempts and the lock deadline")
	}
}

func TestShippingUpsertByWilaya(t *testing.T) {
	repo := NewShippingRepository(freshCollection(t, database.CollectionShipping))
	ctx := context.Background()

	if err := repo.Upsert(ctx, &domain.ShippingRate{Wilaya: "Alger", PriceToDesk: 400, PriceToHome: 600}); err != nil {
		t.Fatalf("insert upsert failed: %v", err)
	}
	if err := repo.Upsert(ctx, &domain.ShippingRate{Wilaya: "Alger", PriceToDesk: 450, PriceToHome: 650}); err != nil {
		t.Fatalf("update upsert failed: %v", err)
	}

	rates, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(rates) != 1 {
		t.Fatalf("rates = %d, want 1 (upsert must not duplicate the wilaya)", len(rates))
	}
	if rates[0].PriceToDesk != 450 || rates[0].PriceToHome != 650 {
		t.Errorf("rate = %+v, want the updated prices", rates[0])
	}

	if err := repo.DeleteByWilaya(ctx, "Alger"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := repo.DeleteByWilaya(ctx, "Alger"); err != ErrShippingRateNotFound {
		t.Fatalf("expected ErrShippingRateNotFound, got %v", err)
	}
}

func TestSettingsSingletonUpsert(t *testing.T) {
	settings := freshCollection(t, database.CollectionSettings)
	profiles := freshCollection(t, database.CollectionProfiles)
	repo := NewSettingsRepository(settings, profiles)
	ctx := context.Background()

	if _, err := repo.GetSettings(ctx); err != ErrSettingsNotFound {
		t.Fatalf("expected ErrSettingsNotFound before any write, got %v", err)
	}

	if _, err := repo.UpsertSettings(ctx, "pixel-1", "token-1"); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	updated, err := repo.UpsertSettings(ctx, "pixel-2", "token-2")
	if err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	if updated.PixelID != "pixel-2" {
		t.Errorf("pixel = %s, want pixel-2", updated.PixelID)
	}

	count, err := settings.CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("settings documents = %d, want a single upserted document", count)
	}
}
