package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/clinicauth/internal/dbx"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/records"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/refreshtokens"
)

// RepositoryManager hands out repositories bound to a pool or a transaction.
type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	Records(db dbx.DBTX) records.Repository
}
