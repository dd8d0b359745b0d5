package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrProductNotFound = errors.New("product not found")
)

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	Create(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
	Update(ctx context.Context, product *domain.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListByCategory(ctx context.Context, categoryID primitive.ObjectID, page, pageSize int) ([]*domain.Product, int64, error)
	FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]*domain.Product, error)
}

type productRepository struct {
	collection *mongo.Collection
}

// NewProductRepository creates a new instance of ProductRepository
func NewProductRepository(collection *mongo.Collection) ProductRepository {
	return &productRepository{collection: collection}
}

// Create inserts a new product
func (r *productRepository) Create(ctx context.Context, product *domain.Product) error {
	if product.ID.IsZero() {
		product.ID = primitive.NewObjectID()
	}
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// FindByID retrieves a product by id
func (r *productRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	product := &domain.Product{}
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(product)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product by ID: %w", err)
	}

	return product, nil
}

// Update replaces the mutable fields of a product
func (r *productRepository) Update(ctx context.Context, product *domain.Product) error {
	set := bson.M{
		"name":          product.Name,
		"description":   product.Description,
		"price":         product.Price,
		"colors":        product.Colors,
		"sizes":         product.Sizes,
		"rating":        product.Rating,
		"reviews":       product.Reviews,
		"images":        product.Images,
		"with_shipping": product.WithShipping,
		"landing_page":  product.LandingPage,
		"category":      product.CategoryID,
		"updated_at":    time.Now(),
	}
	if product.DiscountedPrice != nil {
		set["discounted_price"] = *product.DiscountedPrice
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": product.ID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// Delete removes a product
func (r *productRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrProductNotFound
	}

	return nil
}

// ListByCategory retrieves one page of a category's products in reverse
// insertion order, plus the unpaginated total. The count runs concurrently
// with the page query; both observe the same filter, so the total matches an
// unpaginated count at call time.
func (r *productRepository) ListByCategory(ctx context.Context, categoryID primitive.ObjectID, page, pageSize int) ([]*domain.Product, int64, error) {
	filter := bson.M{"category": categoryID}

	totalCh := make(chan int64, 1)
	errCh := make(chan error, 1)

	go func() {
		total, err := r.collection.CountDocuments(ctx, filter)
		if err != nil {
			errCh <- err
			return
		}
		totalCh <- total
	}()

	skip := (page - 1) * pageSize
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(pageSize))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer cursor.Close(ctx)

	products := []*domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, 0, fmt.Errorf("failed to decode products: %w", err)
	}

	select {
	case total := <-totalCh:
		return products, total, nil
	case err := <-errCh:
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	case <-ctx.Done():
		return nil, 0, ctx.Err()
	}
}

// FindByCategory retrieves all products of a category in reverse insertion
// order.
func (r *productRepository) FindByCategory(ctx context.Context, categoryID primitive.ObjectID) ([]*domain.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{"category": categoryID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list products by category: %w", err)
	}
	defer cursor.Close(ctx)

	products := []*domain.Product{}
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}

	return products, nil
}
