package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/server/auth"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/falcontrade/internal/server/revocation"
)

// TokenService issues session tokens and validates them against the signature,
// the expiry and the revocation registry.
type TokenService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	signer      *auth.TokenSigner
	registry    revocation.Registry
}

func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, signer *auth.TokenSigner, registry revocation.Registry) *TokenService {
	return &TokenService{db: db, repomanager: m, signer: signer, registry: registry}
}

// Issue returns a new token whose subject is the account email.
func (s *TokenService) Issue(subject string) (string, error) {
	token, _, err := s.signer.Issue(subject)
	if err != nil {
		return "", fmt.Errorf("%w: sign token: %v", common.ErrInternal, err)
	}
	return token, nil
}

// Validate resolves token to its account. Signature and expiry are checked
// before the denylist, so garbage never reaches storage.
func (s *TokenService) Validate(ctx context.Context, token string) (*models.Account, error) {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.registry.IsRevoked(ctx, auth.HashToken(token))
	if err != nil {
		return nil, fmt.Errorf("error checking revocation: %w", err)
	}
	if revoked {
		return nil, common.ErrTokenRevoked
	}

	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, fmt.Errorf("error loading account: %w", err)
	}
	return account, nil
}

// Revoke adds token to the denylist until its own expiry. Revoking twice is a
// no-op, and other tokens for the same subject stay valid.
func (s *TokenService) Revoke(ctx context.Context, token string) error {
	claims, err := s.signer.Parse(token)
	if err != nil {
		return err
	}
	if err := s.registry.Revoke(ctx, auth.HashToken(token), claims.ExpiresAt.Time); err != nil {
		return fmt.Errorf("error revoking token: %w", err)
	}
	return nil
}
