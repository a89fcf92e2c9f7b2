package records

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/dbx"
	"github.com/dmitrijs2005/clinicauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert replaces the record's data. The WHERE clause on the conflict branch
// keeps other owners' records intact; no returned row means the write was
// refused.
func (r *PostgresRepository) Upsert(ctx context.Context, record *models.Record) error {
	query :=
		`INSERT INTO records (collection, id, owner_id, data, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (collection, id) DO UPDATE
		 SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at
		 WHERE records.owner_id = EXCLUDED.owner_id
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		record.Collection, record.ID, record.OwnerID, record.Data, record.UpdatedAt).Scan(&record.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrorForbidden
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, collection, id string) (*models.Record, error) {
	query :=
		`SELECT owner_id, data, created_at, updated_at FROM records
		 WHERE collection = $1 AND id = $2
		 `

	rec := &models.Record{Collection: collection, ID: id}
	err := r.db.QueryRowContext(ctx, query, collection, id).
		Scan(&rec.OwnerID, &rec.Data, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return rec, nil
}
