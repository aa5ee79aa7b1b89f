package services

import (
	"context"

	"github.com/dmitrijs2005/falcontrade/internal/common"
	"github.com/dmitrijs2005/falcontrade/internal/server/models"
)

type tokenValidator interface {
	Validate(ctx context.Context, token string) (*models.Account, error)
}

// Gate turns a bearer token into an account and enforces role requirements.
// Authentication failures and insufficient roles are reported distinctly.
type Gate struct {
	tokens tokenValidator
}

func NewGate(tokens tokenValidator) *Gate {
	return &Gate{tokens: tokens}
}

func (g *Gate) RequireAuthenticated(ctx context.Context, token string) (*models.Account, error) {
	if token == "" {
		return nil, common.ErrUnauthenticated
	}
	return g.tokens.Validate(ctx, token)
}

func (g *Gate) RequireAdmin(ctx context.Context, token string) (*models.Account, error) {
	account, err := g.RequireAuthenticated(ctx, token)
	if err != nil {
		return nil, err
	}
	if !account.IsAdmin {
		return nil, common.ErrForbidden
	}
	return account, nil
}
