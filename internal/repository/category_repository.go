package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrCategoryNotFound      = errors.New("category not found")
	ErrCategoryAlreadyExists = errors.New("category with this name already exists")
)

// CategoryRepository defines the interface for category data access
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	List(ctx context.Context) ([]*domain.Category, error)
	ListShowing(ctx context.Context) ([]*domain.Category, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error)
	FindByName(ctx context.Context, name string) (*domain.Category, error)
	Update(ctx context.Context, category *domain.Category) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	PushProduct(ctx context.Context, categoryID, productID primitive.ObjectID) error
}

type categoryRepository struct {
	collection *mongo.Collection
}

// NewCategoryRepository creates a new instance of CategoryRepository
func NewCategoryRepository(collection *mongo.Collection) CategoryRepository {
	return &categoryRepository{collection: collection}
}

// Create inserts a new category. The unique index on name turns a duplicate
// insert into ErrCategoryAlreadyExists.
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	if category.ID.IsZero() {
		category.ID = primitive.NewObjectID()
	}
	if category.Products == nil {
		category.Products = []primitive.ObjectID{}
	}

	_, err := r.collection.InsertOne(ctx, category)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// List retrieves all categories ordered by name
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	return r.list(ctx, bson.M{})
}

// ListShowing retrieves the categories visible on the storefront
func (r *categoryRepository) ListShowing(ctx context.Context) ([]*domain.Category, error) {
	return r.list(ctx, bson.M{"showing": true})
}

func (r *categoryRepository) list(ctx context.Context, filter bson.M) ([]*domain.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer cursor.Close(ctx)

	categories := []*domain.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, fmt.Errorf("failed to decode categories: %w", err)
	}

	return categories, nil
}

// FindByID retrieves a category by id
func (r *categoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.Category, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByName retrieves a category by its name
func (r *categoryRepository) FindByName(ctx context.Context, name string) (*domain.Category, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *categoryRepository) findOne(ctx context.Context, filter bson.M) (*domain.Category, error) {
	category := &domain.Category{}
	err := r.collection.FindOne(ctx, filter).Decode(category)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to find category: %w", err)
	}

	return category, nil
}

// Update replaces the mutable fields of a category
func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	update := bson.M{"$set": bson.M{
		"name":        category.Name,
		"description": category.Description,
		"showing":     category.Showing,
		"image":       category.Image,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": category.ID}, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCategoryAlreadyExists
		}
		return fmt.Errorf("failed to update category: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// Delete removes a category. Products referencing it are left in place.
func (r *categoryRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrCategoryNotFound
	}

	return nil
}

// PushProduct appends a product id to the category's product list. This is
// the inverse of Product.CategoryID and is maintained on product creation.
func (r *categoryRepository) PushProduct(ctx context.Context, categoryID, productID primitive.ObjectID) error {
	update := bson.M{"$push": bson.M{"products": productID}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": categoryID}, update)
	if err != nil {
		return fmt.Errorf("failed to push product into category: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrCategoryNotFound
	}

	return nil
}
