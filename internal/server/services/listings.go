package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// NewListing is the caller supplied part of a listing. Type is the wire form
// ("RFQ" or "OFFER"); every other field is opaque and may be empty.
type NewListing struct {
	Type     string
	Category string
	Title    string
	Details  models.Details
	Quantity string
	Incoterm string
	Country  string
	City     string
}

// ListingService owns listing records and the draft -> published transition.
type ListingService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewListingService(db *sql.DB, m repomanager.RepositoryManager) *ListingService {
	return &ListingService{db: db, repomanager: m}
}

// Create stores a draft listing owned by owner.
func (s *ListingService) Create(ctx context.Context, owner *models.Account, in NewListing) (*models.Listing, error) {
	typ, ok := models.ParseListingType(in.Type)
	if !ok {
		return nil, common.Validationf("unknown listing type %q, expected RFQ or OFFER", in.Type)
	}

	for _, field := range []struct{ name, value string }{
		{"category", in.Category},
		{"title", in.Title},
		{"quantity", in.Quantity},
		{"incoterm", in.Incoterm},
		{"country", in.Country},
		{"city", in.City},
	} {
		if err := checkText(field.name, field.value); err != nil {
			return nil, err
		}
	}
	if err := checkDetails(in.Details); err != nil {
		return nil, err
	}

	details := in.Details
	if details == nil {
		details = models.Details{}
	}

	l := &models.Listing{
		ID:         uuid.NewString(),
		Type:       typ,
		Category:   in.Category,
		Title:      in.Title,
		Details:    details,
		Quantity:   in.Quantity,
		Incoterm:   in.Incoterm,
		Country:    in.Country,
		City:       in.City,
		Status:     models.ListingStatusDraft,
		OwnerID:    owner.ID,
		OwnerEmail: owner.Email,
	}

	created, err := s.repomanager.Listings(s.db).Create(ctx, l)
	if err != nil {
		return nil, fmt.Errorf("error creating listing: %w", err)
	}
	return created, nil
}

// Publish moves the listing to published. Publishing a published listing
// succeeds without change.
func (s *ListingService) Publish(ctx context.Context, caller *models.Account, id string) error {
	if !caller.IsAdmin {
		return common.ErrForbidden
	}
	id, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repomanager.Listings(s.db).SetStatus(ctx, id, models.ListingStatusPublished)
}

// GetPublished returns a published listing. Drafts and unknown ids produce
// the same common.ErrNotFound.
func (s *ListingService) GetPublished(ctx context.Context, id string) (*models.Listing, error) {
	l, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.Published() {
		return nil, common.ErrNotFound
	}
	return l, nil
}

// Delete removes a listing with its messages and attachment records.
func (s *ListingService) Delete(ctx context.Context, caller *models.Account, id string) error {
	if !caller.IsAdmin {
		return common.ErrForbidden
	}
	id, err := parseID(id)
	if err != nil {
		return err
	}
	return s.repomanager.Listings(s.db).Delete(ctx, id)
}

// get loads a listing in any status.
func (s *ListingService) get(ctx context.Context, id string) (*models.Listing, error) {
	id, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return s.repomanager.Listings(s.db).GetByID(ctx, id)
}
