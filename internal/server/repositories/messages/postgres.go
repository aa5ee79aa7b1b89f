package messages

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/dbx"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create stores the message. A listing removed concurrently surfaces as common.ErrNotFound.
func (r *PostgresRepository) Create(ctx context.Context, message *models.Message) (*models.Message, error) {
	query :=
		`INSERT INTO messages (id, listing_id, sender_id, body)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		message.ID, message.ListingID, message.SenderID, message.Body).Scan(&message.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return message, nil
}

// ListByListing returns the thread oldest first, insertion order breaking timestamp ties.
func (r *PostgresRepository) ListByListing(ctx context.Context, listingID string) ([]*models.Message, error) {
	query :=
		`SELECT m.id, m.listing_id, m.sender_id, a.email, m.body, m.created_at
		 FROM messages m JOIN accounts a ON a.id = m.sender_id
		 WHERE m.listing_id = $1
		 ORDER BY m.created_at ASC, m.seq ASC`

	rows, err := r.db.QueryContext(ctx, query, listingID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Message, 0)
	for rows.Next() {
		m := &models.Message{}
		if err := rows.Scan(&m.ID, &m.ListingID, &m.SenderID, &m.SenderEmail, &m.Body, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}
