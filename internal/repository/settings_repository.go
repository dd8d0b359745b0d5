package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	ErrSettingsNotFound = errors.New("settings not found")
	ErrProfileNotFound  = errors.New("brand profile not found")
)

// SettingsRepository manages the two singleton configuration documents:
// the analytics settings and the brand profile. Both are maintained by
// upsert against an empty filter, so at most one of each exists.
type SettingsRepository interface {
	GetSettings(ctx context.Context) (*domain.StoreSettings, error)
	UpsertSettings(ctx context.Context, pixelID, accessToken string) (*domain.StoreSettings, error)
	GetProfile(ctx context.Context) (*domain.BrandProfile, error)
	UpsertProfile(ctx context.Context, profile *domain.BrandProfile) (*domain.BrandProfile, error)
}

type settingsRepository struct {
	settings *mongo.Collection
	profiles *mongo.Collection
}

// NewSettingsRepository creates a new instance of SettingsRepository
func NewSettingsRepository(settings, profiles *mongo.Collection) SettingsRepository {
	return &settingsRepository{settings: settings, profiles: profiles}
}

// GetSettings retrieves the store's analytics settings document
func (r *settingsRepository) GetSettings(ctx context.Context) (*domain.StoreSettings, error) {
	settings := &domain.StoreSettings{}
	err := r.settings.FindOne(ctx, bson.M{}).Decode(settings)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSettingsNotFound
		}
		return nil, fmt.Errorf("failed to get settings: %w", err)
	}

	return settings, nil
}

// UpsertSettings creates or replaces the analytics settings document
func (r *settingsRepository) UpsertSettings(ctx context.Context, pixelID, accessToken string) (*domain.StoreSettings, error) {
	update := bson.M{"$set": bson.M{
		"pixel_id":     pixelID,
		"access_token": accessToken,
		"last_updated": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	settings := &domain.StoreSettings{}
	if err := r.settings.FindOneAndUpdate(ctx, bson.M{}, update, opts).Decode(settings); err != nil {
		return nil, fmt.Errorf("failed to upsert settings: %w", err)
	}

	return settings, nil
}

// GetProfile retrieves the brand profile document
func (r *settingsRepository) GetProfile(ctx context.Context) (*domain.BrandProfile, error) {
	profile := &domain.BrandProfile{}
	err := r.profiles.FindOne(ctx, bson.M{}).Decode(profile)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get brand profile: %w", err)
	}

	return profile, nil
}

// UpsertProfile creates or replaces the brand profile document
func (r *settingsRepository) UpsertProfile(ctx context.Context, profile *domain.BrandProfile) (*domain.BrandProfile, error) {
	update := bson.M{"$set": bson.M{
		"logo":         profile.Logo,
		"brand_name":   profile.BrandName,
		"cover":        profile.Cover,
		"color":        profile.Color,
		"last_updated": time.Now(),
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	updated := &domain.BrandProfile{}
	if err := r.profiles.FindOneAndUpdate(ctx, bson.M{}, update, opts).Decode(updated); err != nil {
		return nil, fmt.Errorf("failed to upsert brand profile: %w", err)
	}

	return updated, nil
}
