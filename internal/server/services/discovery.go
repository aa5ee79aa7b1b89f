package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/repomanager"
)

const (
	DefaultSearchLimit  = 200
	DefaultSearchOffset = 0
)

// SearchQuery holds raw discovery arguments. Nil Limit/Offset take the defaults.
type SearchQuery struct {
	Type     string
	Category string
	Text     string
	Limit    *int
	Offset   *int
}

// DiscoveryService is the read-only marketplace query over published listings.
type DiscoveryService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewDiscoveryService(db *sql.DB, m repomanager.RepositoryManager) *DiscoveryService {
	return &DiscoveryService{db: db, repomanager: m}
}

// Search returns published listings newest first. An unrecognized type filter
// is dropped rather than rejected; negative paging is a validation error.
func (s *DiscoveryService) Search(ctx context.Context, q SearchQuery) ([]*models.Listing, error) {
	filter, err := buildFilter(q)
	if err != nil {
		return nil, err
	}

	result, err := s.repomanager.Listings(s.db).Search(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("error searching listings: %w", err)
	}
	return result, nil
}

func buildFilter(q SearchQuery) (models.ListingFilter, error) {
	if err := checkText("category", q.Category); err != nil {
		return models.ListingFilter{}, err
	}
	if err := checkText("q", q.Text); err != nil {
		return models.ListingFilter{}, err
	}

	f := models.ListingFilter{
		Category: q.Category,
		Text:     q.Text,
		Limit:    DefaultSearchLimit,
		Offset:   DefaultSearchOffset,
	}

	if t, ok := models.ParseListingType(q.Type); ok {
		f.Type = &t
	}
	if q.Limit != nil {
		if *q.Limit < 0 {
			return f, common.Validationf("limit must not be negative")
		}
		f.Limit = *q.Limit
	}
	if q.Offset != nil {
		if *q.Offset < 0 {
			return f, common.Validationf("offset must not be negative")
		}
		f.Offset = *q.Offset
	}
	return f, nil
}
