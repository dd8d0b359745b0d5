package database

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Collection names
const (
	CollectionCategories  = "categories"
	CollectionProducts    = "products"
	CollectionUsers       = "users"
	CollectionOrders      = "orders"
	CollectionSettings    = "settings"
	CollectionProfiles    = "profiles"
	CollectionPolicies    = "policies"
	CollectionShipping    = "shipping"
	CollectionHelpTickets = "help_tickets"
)

// Connect establishes a MongoDB client and verifies the connection with a
// ping.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return client, nil
}

// Health returns basic connectivity information for the health endpoint.
func Health(ctx context.Context, client *mongo.Client) map[string]string {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return map[string]string{
			"status": "down",
			"error":  err.Error(),
		}
	}

	return map[string]string{"status": "up"}
}
