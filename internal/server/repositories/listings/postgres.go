package listings

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

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

const selectColumns = `SELECT l.id, l.type, l.category, l.title, l.details, l.quantity, l.incoterm,
		 l.country, l.city, l.status, l.owner_id, a.email, l.created_at
		 FROM listings l JOIN accounts a ON a.id = l.owner_id`

// Create inserts a listing. The database assigns created_at.
func (r *PostgresRepository) Create(ctx context.Context, listing *models.Listing) (*models.Listing, error) {
	details, err := encodeDetails(listing.Details)
	if err != nil {
		return nil, err
	}

	query :=
		`INSERT INTO listings (id, type, category, title, details, quantity, incoterm, country, city, status, owner_id)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING created_at`

	err = r.db.QueryRowContext(ctx, query,
		listing.ID, listing.Type.String(), listing.Category, listing.Title, details,
		listing.Quantity, listing.Incoterm, listing.Country, listing.City,
		listing.Status.String(), listing.OwnerID).Scan(&listing.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return listing, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	query := selectColumns + `
		 WHERE l.id = $1`

	l, err := scanListing(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return l, nil
}

func (r *PostgresRepository) SetStatus(ctx context.Context, id string, status models.ListingStatus) error {
	query := `UPDATE listings SET status = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id, status.String())
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

// Search returns published listings matching filter, newest first. Rows created
// in the same instant are ordered by insertion sequence, latest first.
func (r *PostgresRepository) Search(ctx context.Context, filter models.ListingFilter) ([]*models.Listing, error) {
	query, args := buildSearch(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Listing, 0)
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

// Delete removes the listing; messages and attachments go with it.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

func buildSearch(filter models.ListingFilter) (string, []any) {
	var sb strings.Builder
	sb.WriteString(selectColumns)
	sb.WriteString("\n\t\t WHERE l.status = $1")

	args := []any{models.ListingStatusPublished.String()}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Type != nil {
		sb.WriteString(" AND l.type = " + next(filter.Type.String()))
	}
	if filter.Category != "" {
		sb.WriteString(" AND l.category = " + next(filter.Category))
	}
	if filter.Text != "" {
		p := next("%" + escapeLike(filter.Text) + "%")
		sb.WriteString(" AND (l.title ILIKE " + p + ` ESCAPE '\'` +
			" OR l.category ILIKE " + p + ` ESCAPE '\'` +
			" OR l.details::text ILIKE " + p + ` ESCAPE '\')`)
	}

	sb.WriteString("\n\t\t ORDER BY l.created_at DESC, l.seq DESC")
	sb.WriteString("\n\t\t LIMIT " + next(filter.Limit))
	sb.WriteString(" OFFSET " + next(filter.Offset))

	return sb.String(), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes s match literally inside an ILIKE pattern.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanListing(row scanner) (*models.Listing, error) {
	var (
		l       models.Listing
		typ     string
		status  string
		details []byte
	)
	err := row.Scan(&l.ID, &typ, &l.Category, &l.Title, &details, &l.Quantity, &l.Incoterm,
		&l.Country, &l.City, &status, &l.OwnerID, &l.OwnerEmail, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	var ok bool
	if l.Type, ok = models.ParseListingType(typ); !ok {
		return nil, fmt.Errorf("db error: unknown listing type %q", typ)
	}
	if l.Status, ok = models.ParseListingStatus(status); !ok {
		return nil, fmt.Errorf("db error: unknown listing status %q", status)
	}
	if l.Details, err = decodeDetails(details); err != nil {
		return nil, err
	}
	return &l, nil
}

func encodeDetails(d models.Details) ([]byte, error) {
	if d == nil {
		d = models.Details{}
	}
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("encode details: %w", err)
	}
	return b, nil
}

func decodeDetails(b []byte) (models.Details, error) {
	d := models.Details{}
	if len(b) == 0 {
		return d, nil
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode details: %w", err)
	}
	if d == nil {
		d = models.Details{}
	}
	return d, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
