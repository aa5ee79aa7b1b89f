// Package attachments stores attachment metadata. Object bytes live in S3
// under the recorded storage key.
package attachments

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/dbx"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
)

// PostgresRepository implements attachment storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create records an attachment. A missing listing surfaces as common.ErrNotFound
// and a reused storage key as common.ErrConflict.
func (r *PostgresRepository) Create(ctx context.Context, attachment *models.Attachment) (*models.Attachment, error) {
	query := `
		INSERT INTO attachments (id, listing_id, uploader_id, file_name, storage_key)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		attachment.ID, attachment.ListingID, attachment.UploaderID, attachment.FileName, attachment.StorageKey).
		Scan(&attachment.CreatedAt)
	if err != nil {
		switch {
		case dbx.IsForeignKeyViolation(err):
			return nil, common.ErrNotFound
		case dbx.IsUniqueViolation(err):
			return nil, common.ErrConflict
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return attachment, nil
}

// ListByListing returns the listing's attachments oldest first.
func (r *PostgresRepository) ListByListing(ctx context.Context, listingID string) ([]*models.Attachment, error) {
	query := `
		SELECT t.id, t.listing_id, t.uploader_id, a.email, t.file_name, t.storage_key, t.created_at
		FROM attachments t JOIN accounts a ON a.id = t.uploader_id
		WHERE t.listing_id = $1
		ORDER BY t.created_at ASC, t.seq ASC
	`
	rows, err := r.db.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("failed to select attachments: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Attachment, 0)
	for rows.Next() {
		var item models.Attachment
		if err := rows.Scan(&item.ID, &item.ListingID, &item.UploaderID, &item.UploaderEmail,
			&item.FileName, &item.StorageKey, &item.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
