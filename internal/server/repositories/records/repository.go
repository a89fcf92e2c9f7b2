// Package records stores document-store records for the provider server.
package records

import (
	"context"

	"github.com/dmitrijs2005/clinicauth/internal/server/models"
)

type Repository interface {
	// Upsert writes record. An existing record owned by another account is
	// left untouched and yields common.ErrorForbidden.
	Upsert(ctx context.Context, record *models.Record) error
	Get(ctx context.Context, collection, id string) (*models.Record, error)
}
