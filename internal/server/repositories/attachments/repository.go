package attachments

import (
	"context"

	"github.com/dmitrijs2005/falcontrade/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error)
	ListByListing(ctx context.Context, listingID string) ([]*models.Attachment, error)
}
