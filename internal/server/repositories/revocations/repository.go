package revocations

import (
	"context"
	"time"
)

// Repository is the revocation denylist keyed by token hash.
type Repository interface {
	Revoke(ctx context.Context, tokenHash string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenHash string) (bool, error)
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}
