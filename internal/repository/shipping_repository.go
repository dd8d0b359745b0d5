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
	ErrShippingRateNotFound = errors.New("shipping rate not found")
)

// ShippingRepository defines the interface for shipping rate data access.
// Rates are keyed by wilaya, enforced by a unique index.
type ShippingRepository interface {
	List(ctx context.Context) ([]*domain.ShippingRate, error)
	CreateMany(ctx context.Context, rates []*domain.ShippingRate) error
	Upsert(ctx context.Context, rate *domain.ShippingRate) error
	DeleteByWilaya(ctx context.Context, wilaya string) error
}

type shippingRepository struct {
	collection *mongo.Collection
}

// NewShippingRepository creates a new instance of ShippingRepository
func NewShippingRepository(collection *mongo.Collection) ShippingRepository {
	return &shippingRepository{collection: collection}
}

// List retrieves all shipping rates ordered by wilaya
func (r *shippingRepository) List(ctx context.Context) ([]*domain.ShippingRate, error) {
	opts := options.Find().SetSort(bson.D{{Key: "wilaya", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list shipping rates: %w", err)
	}
	defer cursor.Close(ctx)

	rates := []*domain.ShippingRate{}
	if err := cursor.All(ctx, &rates); err != nil {
		return nil, fmt.Errorf("failed to decode shipping rates: %w", err)
	}

	return rates, nil
}

// CreateMany seeds the initial rate table
func (r *shippingRepository) CreateMany(ctx context.Context, rates []*domain.ShippingRate) error {
	docs := make([]interface{}, 0, len(rates))
	for _, rate := range rates {
		if rate.ID.IsZero() {
			rate.ID = primitive.NewObjectID()
		}
		docs = append(docs, rate)
	}

	if _, err := r.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("failed to seed shipping rates: %w", err)
	}

	return nil
}

// Upsert creates or updates the rate for a wilaya
func (r *shippingRepository) Upsert(ctx context.Context, rate *domain.ShippingRate) error {
	update := bson.M{"$set": bson.M{
		"price_to_desk": rate.PriceToDesk,
		"price_to_home": rate.PriceToHome,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := r.collection.UpdateOne(ctx, bson.M{"wilaya": rate.Wilaya}, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert shipping rate: %w", err)
	}

	return nil
}

// DeleteByWilaya removes the rate for a wilaya
func (r *shippingRepository) DeleteByWilaya(ctx context.Context, wilaya string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"wilaya": wilaya})
	if err != nil {
		return fmt.Errorf("failed to delete shipping rate: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrShippingRateNotFound
	}

	return nil
}
