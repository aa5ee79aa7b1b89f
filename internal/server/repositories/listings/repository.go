package listings

import (
	"context"

	"github.com/dmitrijs2005/falcontrade/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, listing *models.Listing) (*models.Listing, error)
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	SetStatus(ctx context.Context, id string, status models.ListingStatus) error
	Search(ctx context.Context, filter models.ListingFilter) ([]*models.Listing, error)
	Delete(ctx context.Context, id string) error
}
