package repository

import (
	"context"
	"fmt"
	"time"

	"storefront/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// HelpTicketRepository stores support messages received by the help-desk
// service.
type HelpTicketRepository interface {
	Create(ctx context.Context, ticket *domain.HelpTicket) error
}

type helpTicketRepository struct {
	collection *mongo.Collection
}

// NewHelpTicketRepository creates a new instance of HelpTicketRepository
func NewHelpTicketRepository(collection *mongo.Collection) HelpTicketRepository {
	return &helpTicketRepository{collection: collection}
}

// Create inserts a new support ticket
func (r *helpTicketRepository) Create(ctx context.Context, ticket *domain.HelpTicket) error {
	if ticket.ID.IsZero() {
		ticket.ID = primitive.NewObjectID()
	}
	ticket.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, ticket); err != nil {
		return fmt.Errorf("failed to create help ticket: %w", err)
	}

	return nil
}
