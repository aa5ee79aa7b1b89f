package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/falcontrade/internal/dbx"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/attachments"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/listings"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/messages"
	"github.com/dmitrijs2005/falcontrade/internal/server/repositories/revocations"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Listings(db dbx.DBTX) listings.Repository
	Messages(db dbx.DBTX) messages.Repository
	Attachments(db dbx.DBTX) attachments.Repository
	Revocations(db dbx.DBTX) revocations.Repository
}
