package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureIndexes creates the indexes the application depends on. The unique
// index on categories.name is load-bearing: it is what makes the lazy
// principal-category bootstrap safe under concurrent creation.
func EnsureIndexes(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	indexes := map[string][]mongo.IndexModel{
		CollectionCategories: {
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "showing", Value: 1}}},
		},
		CollectionProducts: {
			{Keys: bson.D{{Key: "category", Value: 1}}},
			{Keys: bson.D{{Key: "rating", Value: 1}}},
			{Keys: bson.D{{Key: "discounted_price", Value: 1}}},
			{Keys: bson.D{{Key: "with_shipping", Value: 1}}},
		},
		CollectionUsers: {
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "username", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		CollectionOrders: {
			{Keys: bson.D{{Key: "reference", Value: 1}}},
		},
		CollectionShipping: {
			{
				Keys:    bson.D{{Key: "wilaya", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
	}

	for collection, models := range indexes {
		names, err := db.Collection(collection).Indexes().CreateMany(ctx, models)
		if err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", collection, err)
		}
		logger.Info("Ensured indexes",
			zap.String("collection", collection),
			zap.Strings("indexes", names),
		)
	}

	return nil
}
