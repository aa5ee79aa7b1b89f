// Package services contains server-side business logic: accounts and session
// tokens, the listing lifecycle, discovery, messaging and attachments.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/dbx"
	"github.com/dmitrijs2005/falcontrade/internal/logging"
	"github.com/dmitrijs2005/falcontrade/internal/server/auth"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

type tokenIssuer interface {
	Issue(subject string) (string, error)
	Revoke(ctx context.Context, token string) error
}

// AccountService handles registration, login, logout and admin provisioning.
type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      *auth.PasswordHasher
	tokens      tokenIssuer
	logger      logging.Logger
}

func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher, tokens tokenIssuer, logger logging.Logger) *AccountService {
	return &AccountService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger.With("module", "accounts"),
	}
}

// Register creates a non-admin account. Email uniqueness is decided by the
// database, so concurrent duplicates yield exactly one success.
func (s *AccountService) Register(ctx context.Context, email, password string) (*models.Account, error) {
	if err := checkText("email", email); err != nil {
		return nil, err
	}
	if err := auth.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, err
	}
	return s.create(ctx, email, password, false)
}

// Login checks the credentials and returns a new session token. Unknown
// emails and wrong passwords are indistinguishable.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, error) {
	if err := checkText("email", email); err != nil {
		return "", err
	}
	account, err := s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			s.hasher.VerifyNothing(password)
			return "", common.ErrInvalidCredentials
		}
		return "", fmt.Errorf("error loading account: %w", err)
	}
	if !s.hasher.Verify(account.PasswordHash, password) {
		return "", common.ErrInvalidCredentials
	}
	return s.tokens.Issue(account.Email)
}

// Logout revokes the presented token only.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// EnsureAdmin makes email an administrator, creating the account with password
// when it does not exist yet. An existing account keeps its password. The
// lookup and the promotion or insert share one transaction; if a concurrent
// registration wins the insert, the account is promoted on a second attempt.
func (s *AccountService) EnsureAdmin(ctx context.Context, email, password string) (*models.Account, bool, error) {
	if err := checkText("email", email); err != nil {
		return nil, false, err
	}
	account, created, err := s.ensureAdmin(ctx, email, password)
	if errors.Is(err, common.ErrConflict) {
		account, created, err = s.ensureAdmin(ctx, email, password)
	}
	if err != nil {
		return nil, false, err
	}
	if created {
		s.logger.Info(ctx, "admin account created", "email", email)
	}
	return account, created, nil
}

func (s *AccountService) ensureAdmin(ctx context.Context, email, password string) (*models.Account, bool, error) {
	var (
		account *models.Account
		created bool
	)
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Accounts(tx)

		existing, err := repo.GetByEmail(ctx, email)
		switch {
		case err == nil:
			if !existing.IsAdmin {
				if err := repo.SetAdmin(ctx, email, true); err != nil {
					return fmt.Errorf("error promoting account: %w", err)
				}
				existing.IsAdmin = true
				s.logger.Info(ctx, "account promoted to admin", "email", email)
			}
			account = existing
			return nil
		case !errors.Is(err, common.ErrNotFound):
			return fmt.Errorf("error loading account: %w", err)
		}

		if err := auth.ValidateEmail(email); err != nil {
			return err
		}
		if err := auth.ValidatePassword(password); err != nil {
			return err
		}

		account, err = s.insert(ctx, repo, email, password, true)
		created = err == nil
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return account, created, nil
}

func (s *AccountService) create(ctx context.Context, email, password string, isAdmin bool) (*models.Account, error) {
	return s.insert(ctx, s.repomanager.Accounts(s.db), email, password, isAdmin)
}

func (s *AccountService) insert(ctx context.Context, repo accounts.Repository, email, password string, isAdmin bool) (*models.Account, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      isAdmin,
	}
	created, err := repo.Create(ctx, account)
	if err != nil {
		if errors.Is(err, common.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}
	return created, nil
}
