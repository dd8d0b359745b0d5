package domain

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category groups products for the storefront. Products holds the ids of
// products created under this category and is the inverse of
// Product.CategoryID.
type Category struct {
	ID          primitive.ObjectID   `json:"id" bson:"_id,omitempty"`
	Name        string               `json:"name" bson:"name"`
	Description string               `json:"description" bson:"description"`
	Showing     bool                 `json:"showing" bson:"showing"`
	Image       string               `json:"image" bson:"image"`
	Products    []primitive.ObjectID `json:"products" bson:"products"`
}
