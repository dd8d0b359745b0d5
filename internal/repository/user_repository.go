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
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user with this email or username already exists")
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountAdmins(ctx context.Context) (int64, error)
	RecordFailedLogin(ctx context.Context, id primitive.ObjectID, attempts int, lockUntil *time.Time) error
	ResetLoginAttempts(ctx context.Context, id primitive.ObjectID) error
	AddCartItem(ctx context.Context, userID primitive.ObjectID, item domain.CartItem) error
	RemoveCartItem(ctx context.Context, userID, productID primitive.ObjectID) error
}

type userRepository struct {
	collection *mongo.Collection
}

// NewUserRepository creates a new instance of UserRepository
func NewUserRepository(collection *mongo.Collection) UserRepository {
	return &userRepository{collection: collection}
}

// Create inserts a new user. The unique indexes on email and username turn
// a duplicate insert into ErrUserAlreadyExists, so the existence check and
// the insert are a single atomic step.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	if user.Cart == nil {
		user.Cart = []domain.CartItem{}
	}

	_, err := r.collection.InsertOne(ctx, user)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// FindByEmail retrieves a user by email
func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

// FindByID retrieves a user by id
func (r *userRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *userRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	user := &domain.User{}
	err := r.collection.FindOne(ctx, filter).Decode(user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return user, nil
}

// List retrieves all users, newest first
func (r *userRepository) List(ctx context.Context) ([]*domain.User, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: -1}})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []*domain.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}

	return users, nil
}

// Delete removes a user
func (r *userRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if result.DeletedCount == 0 {
		return ErrUserNotFound
	}

	return nil
}

// CountAdmins returns the number of admin accounts
func (r *userRepository) CountAdmins(ctx context.Context) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"role": domain.RoleAdmin})
	if err != nil {
		return 0, fmt.Errorf("failed to count admins: %w", err)
	}

	return count, nil
}

// RecordFailedLogin stores the failed attempt counter and, once the
// threshold is crossed, the lockout deadline.
func (r *userRepository) RecordFailedLogin(ctx context.Context, id primitive.ObjectID, attempts int, lockUntil *time.Time) error {
	set := bson.M{
		"failed_login_attempts": attempts,
		"updated_at":            time.Now(),
	}
	if lockUntil != nil {
		set["lock_until"] = *lockUntil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to record failed login: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ResetLoginAttempts clears the failure counter and lockout after a
// successful login.
func (r *userRepository) ResetLoginAttempts(ctx context.Context, id primitive.ObjectID) error {
	update := bson.M{
		"$set":   bson.M{"failed_login_attempts": 0, "updated_at": time.Now()},
		"$unset": bson.M{"lock_until": ""},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}

	return nil
}

// AddCartItem merges a product into the user's cart: quantities accumulate
// for a product already present, otherwise a new line is pushed.
func (r *userRepository) AddCartItem(ctx context.Context, userID primitive.ObjectID, item domain.CartItem) error {
	// Try to bump the quantity of an existing line first.
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID, "cart.product_id": item.ProductID},
		bson.M{"$inc": bson.M{"cart.$.quantity": item.Quantity}},
	)
	if err != nil {
		return fmt.Errorf("failed to update cart item: %w", err)
	}
	if result.MatchedCount > 0 {
		return nil
	}

	result, err = r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$push": bson.M{"cart": item}},
	)
	if err != nil {
		return fmt.Errorf("failed to add cart item: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}

	return nil
}

// RemoveCartItem removes a product line from the user's cart
func (r *userRepository) RemoveCartItem(ctx context.Context, userID, productID primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$pull": bson.M{"cart": bson.M{"product_id": productID}}},
	)
	if err != nil {
		return fmt.Errorf("failed to remove cart item: %w", err)
	}

	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}

	return nil
}
