package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/falcontrade/internal/server/storage"
	"github.com/google/uuid"
)

const maxFileNameLength = 255

// Presigner issues direct-to-storage URLs for object keys.
type Presigner interface {
	PresignPut(ctx context.Context, key string) (string, error)
	PresignGet(ctx context.Context, key string) (string, error)
}

// AttachmentService records listing attachments and hands out presigned URLs.
type AttachmentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	presigner   Presigner
}

func NewAttachmentService(db *sql.DB, m repomanager.RepositoryManager, p Presigner) *AttachmentService {
	return &AttachmentService{db: db, repomanager: m, presigner: p}
}

// RequestUpload records an attachment for an existing listing and returns it
// with a presigned PUT URL in URL.
func (s *AttachmentService) RequestUpload(ctx context.Context, uploader *models.Account, listingID, fileName string) (*models.Attachment, error) {
	name, err := cleanFileName(fileName)
	if err != nil {
		return nil, err
	}
	listingID, err = requireListing(ctx, s.repomanager, s.db, listingID)
	if err != nil {
		return nil, err
	}

	key := storage.AttachmentKey(listingID)
	url, err := s.presigner.PresignPut(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("error presigning upload: %w", err)
	}

	a := &models.Attachment{
		ID:            uuid.NewString(),
		ListingID:     listingID,
		UploaderID:    uploader.ID,
		UploaderEmail: uploader.Email,
		FileName:      name,
		StorageKey:    key,
	}
	created, err := s.repomanager.Attachments(s.db).Create(ctx, a)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating attachment: %w", err)
	}
	created.URL = url
	return created, nil
}

// List returns the listing's attachments oldest first, each with a presigned GET URL.
func (s *AttachmentService) List(ctx context.Context, listingID string) ([]*models.Attachment, error) {
	listingID, err := requireListing(ctx, s.repomanager, s.db, listingID)
	if err != nil {
		return nil, err
	}

	items, err := s.repomanager.Attachments(s.db).ListByListing(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("error listing attachments: %w", err)
	}
	for _, a := range items {
		if a.URL, err = s.presigner.PresignGet(ctx, a.StorageKey); err != nil {
			return nil, fmt.Errorf("error presigning download: %w", err)
		}
	}
	return items, nil
}

// cleanFileName keeps only the last path element of a client supplied name.
func cleanFileName(name string) (string, error) {
	if err := checkText("file name", name); err != nil {
		return "", err
	}
	name = path.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == ".." || name == "/" {
		return "", common.Validationf("file name is required")
	}
	if utf8.RuneCountInString(name) > maxFileNameLength {
		return "", common.Validationf("file name must be at most %d characters", maxFileNameLength)
	}
	return name, nil
}
