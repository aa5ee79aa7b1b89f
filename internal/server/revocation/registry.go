// Package revocation implements the session token denylist. Entries are keyed
// by token digest and only need to live until the token itself expires.
package revocation

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/repomanager"
)

// Registry records revoked tokens. Revoke is idempotent.
type Registry interface {
	Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
}

// Purger drops entries for tokens that have already expired.
type Purger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// PostgresRegistry keeps the denylist in the revoked_tokens table.
type PostgresRegistry struct {
	db          *sql.DB
	repoManager repomanager.RepositoryManager
}

func NewPostgresRegistry(db *sql.DB, rm repomanager.RepositoryManager) *PostgresRegistry {
	return &PostgresRegistry{db: db, repoManager: rm}
}

func (r *PostgresRegistry) Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error {
	return r.repoManager.Revocations(r.db).Revoke(ctx, tokenHash, expiresAt)
}

func (r *PostgresRegistry) IsRevoked(ctx context.Context, tokenHash string) (bool, error) {
	return r.repoManager.Revocations(r.db).IsRevoked(ctx, tokenHash)
}

func (r *PostgresRegistry) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	return r.repoManager.Revocations(r.db).PurgeExpired(ctx, before)
}
