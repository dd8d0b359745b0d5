package repository

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrPolicyNotFound = errors.New("policy not found")
)

// PolicyRepository defines the interface for policy page data access
type PolicyRepository interface {
	Create(ctx context.Context, policy *domain.Policy) error
	List(ctx context.Context) ([]*domain.Policy, error)
	Update(ctx context.Context, policy *domain.Policy) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type policyRepository struct {
	collection *mongo.Collection
}

// NewPolicyRepository creates a new instance of PolicyRepository
func NewPolicyRepository(collection *mongo.Collection) PolicyRepository {
	return &policyRepository{collection: collection}
}

// Create inserts a new policy page
func (r *policyRepository) Create(ctx context.Context, policy *domain.Policy) error {
	if policy.ID.IsZero() {
		policy.ID = primitive.NewObjectID()
	}

	if _, err := r.collection.InsertOne(ctx, policy); err != nil {
		return fmt.Errorf("failed to create policy: %w", err)
	}

	return nil
}

// List retrieves all policy pages
func (r *policyRepository) List(ctx context.Context) ([]*domain.Policy, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list policies: %w", err)
	}
	defer cursor.Close(ctx)

	policies := []*domain.Policy{}
	if err := cursor.All(ctx, &policies); err != nil {
		return nil, fmt.Errorf("failed to decode policies: %w", err)
	}

	return policies, nil
}

// Update replaces a policy's title and content
func (r *policyRepository) Update(ctx context.Context, policy *domain.Policy) error {
	update := bson.M{"$set": bson.M{
		"title":   policy.Title,
		"content": policy.Content,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": policy.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update policy: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrPolicyNotFound
	}

	return nil
}

// Delete removes a policy page
func (r *policyRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete policy: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrPolicyNotFound
	}

	return nil
}
