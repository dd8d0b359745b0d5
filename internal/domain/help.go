package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HelpTicket is a support message submitted through the help-desk service.
type HelpTicket struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserID    string             `json:"user_id" bson:"user_id"`
	Message   string             `json:"message" bson:"message"`
	CreatedAt time.Time          `json:"created_at" bson:"created_at"`
}
