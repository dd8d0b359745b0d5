package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoreSettings holds the analytics pixel configuration. There is a single
// settings document per store, maintained by upsert.
type StoreSettings struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	PixelID     string             `json:"pixel_id" bson:"pixel_id"`
	AccessToken string             `json:"access_token" bson:"access_token"`
	LastUpdated time.Time          `json:"last_updated" bson:"last_updated"`
}

// BrandAsset is a toggleable branding element.
type BrandAsset struct {
	Value  string `json:"value" bson:"value"`
	Enable bool   `json:"enable" bson:"enable"`
}

// BrandProfile is the storefront's visual identity: logo, name, cover image
// and theme color. Single document per store, maintained by upsert.
type BrandProfile struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Logo        BrandAsset         `json:"logo" bson:"logo"`
	BrandName   BrandAsset         `json:"brand_name" bson:"brand_name"`
	Cover       BrandAsset         `json:"cover" bson:"cover"`
	Color       string             `json:"color" bson:"color"`
	LastUpdated time.Time          `json:"last_updated" bson:"last_updated"`
}

// Policy is a legal or informational page (terms, returns, privacy).
type Policy struct {
	ID      primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Title   string             `json:"title" bson:"title"`
	Content string             `json:"content" bson:"content"`
}

// ShippingRate is the delivery pricing for one wilaya (province). Desk is
// the price to a pickup desk, Home the price to a home address.
type ShippingRate struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Wilaya      string             `json:"wilaya" bson:"wilaya"`
	PriceToDesk float64            `json:"price_to_desk" bson:"price_to_desk"`
	PriceToHome float64            `json:"price_to_home" bson:"price_to_home"`
}
