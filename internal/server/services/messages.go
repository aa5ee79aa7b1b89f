package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// MessageService keeps per-listing message threads. A listing only has to
// exist; its publish status does not matter.
type MessageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewMessageService(db *sql.DB, m repomanager.RepositoryManager) *MessageService {
	return &MessageService{db: db, repomanager: m}
}

func (s *MessageService) Add(ctx context.Context, sender *models.Account, listingID, body string) (*models.Message, error) {
	if err := checkText("body", body); err != nil {
		return nil, err
	}
	listingID, err := requireListing(ctx, s.repomanager, s.db, listingID)
	if err != nil {
		return nil, err
	}

	m := &models.Message{
		ID:          uuid.NewString(),
		ListingID:   listingID,
		SenderID:    sender.ID,
		SenderEmail: sender.Email,
		Body:        body,
	}
	created, err := s.repomanager.Messages(s.db).Create(ctx, m)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating message: %w", err)
	}
	return created, nil
}

// List returns the thread oldest first.
func (s *MessageService) List(ctx context.Context, listingID string) ([]*models.Message, error) {
	listingID, err := requireListing(ctx, s.repomanager, s.db, listingID)
	if err != nil {
		return nil, err
	}

	result, err := s.repomanager.Messages(s.db).ListByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("error listing messages: %w", err)
	}
	return result, nil
}

// requireListing checks that id names a stored listing in any status and
// returns its canonical form.
func requireListing(ctx context.Context, m repomanager.RepositoryManager, db *sql.DB, id string) (string, error) {
	id, err := parseID(id)
	if err != nil {
		return "", err
	}
	if _, err := m.Listings(db).GetByID(ctx, id); err != nil {
		return "", err
	}
	return id, nil
}
