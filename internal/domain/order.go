package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Order statuses
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusCancelled = "cancelled"
)

// OrderItem is one product line of an order.
type OrderItem struct {
	ProductID primitive.ObjectID `json:"product_id" bson:"product_id"`
	Quantity  int                `json:"quantity" bson:"quantity"`
}

// Order represents a customer order. Orders can be placed by guests, so
// UserID is optional. Reference is a human-facing tracking id.
type Order struct {
	ID          primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	Reference   string              `json:"reference" bson:"reference"`
	Name        string              `json:"name" bson:"name"`
	Phone       string              `json:"phone" bson:"phone"`
	Address     string              `json:"address" bson:"address"`
	Items       []OrderItem         `json:"items" bson:"items"`
	TotalAmount float64             `json:"total_amount" bson:"total_amount"`
	Status      string              `json:"status" bson:"status"`
	UserID      *primitive.ObjectID `json:"user_id,omitempty" bson:"user,omitempty"`
	CreatedAt   time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at" bson:"updated_at"`
}
