// Package accounts declares and implements storage for provider accounts.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/clinicauth/internal/server/models"
)

type Repository interface {
	// Create inserts account and fills in CreatedAt. A duplicate email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)
	SetDisabled(ctx context.Context, email string, disabled bool) error
}
