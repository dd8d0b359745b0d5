package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Shipping eligibility tokens. The storefront serves a localized market, so
// the Arabic forms are accepted alongside the English ones.
const (
	ShippingYes       = "yes"
	ShippingNo        = "no"
	ShippingYesArabic = "نعم"
	ShippingNoArabic  = "لا"
)

// NormalizeShipping maps an accepted shipping token to its canonical English
// form so stored documents use a single vocabulary.
func NormalizeShipping(token string) string {
	switch token {
	case ShippingYesArabic:
		return ShippingYes
	case ShippingNoArabic:
		return ShippingNo
	default:
		return token
	}
}

// Review is a customer review embedded in a product document.
type Review struct {
	Text      string    `json:"text" bson:"text"`
	Images    []string  `json:"images" bson:"images"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// LandingBlock is one title/description/image block of a product's
// landing-page content.
type LandingBlock struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Image       string `json:"image" bson:"image"`
}

// Product represents a product in the catalog. Every product belongs to
// exactly one category.
type Product struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name            string             `json:"name" bson:"name"`
	Description     string             `json:"description" bson:"description"`
	Price           float64            `json:"price" bson:"price"`
	DiscountedPrice *float64           `json:"discounted_price,omitempty" bson:"discounted_price,omitempty"`
	Colors          []string           `json:"colors" bson:"colors"`
	Sizes           []string           `json:"sizes" bson:"sizes"`
	Rating          float64            `json:"rating" bson:"rating"`
	Reviews         []Review           `json:"reviews" bson:"reviews"`
	Images          []string           `json:"images" bson:"images"`
	WithShipping    string             `json:"with_shipping" bson:"with_shipping"`
	LandingPage     []LandingBlock     `json:"landing_page,omitempty" bson:"landing_page,omitempty"`
	CategoryID      primitive.ObjectID `json:"category_id" bson:"category"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}
