package messages

import (
	"context"

	"github.com/dmitrijs2005/falcontrade/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, message *models.Message) (*models.Message, error)
	ListByListing(ctx context.Context, listingID string) ([]*models.Message, error)
}
