package accounts

import (
	"context"

	"github.com/dmitrijs2005/falcontrade/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	SetAdmin(ctx context.Context, email string, isAdmin bool) error
}
