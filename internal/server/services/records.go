package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/rpc"
	"github.com/dmitrijs2005/clinicauth/internal/server/models"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/repomanager"
)

// privateCollections hold records only their owner may read.
var privateCollections = map[string]bool{
	"users": true,
}

// RecordService is the provider's document store. Only the account that
// created a record may overwrite it, and records in private collections are
// readable by their owner alone. Other collections are readable by any
// signed-in account.
type RecordService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	now         func() time.Time
}

func NewRecordService(db *sql.DB, m repomanager.RepositoryManager) *RecordService {
	return &RecordService{
		db:          db,
		repomanager: m,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Write stores data, a JSON object, under collection/id. String values
// equal to rpc.ServerTimestampPlaceholder are replaced with the server's
// clock.
func (s *RecordService) Write(ctx context.Context, ownerID, collection, id string, data []byte) error {
	if collection == "" || id == "" {
		return common.ErrorInvalidArgument
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		return common.ErrorInvalidArgument
	}

	now := s.now()
	resolvePlaceholders(doc, now.Format(time.RFC3339Nano))

	resolved, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	rec := &models.Record{
		Collection: collection,
		ID:         id,
		OwnerID:    ownerID,
		Data:       resolved,
		UpdatedAt:  now,
	}
	if err := s.repomanager.Records(s.db).Upsert(ctx, rec); err != nil {
		if errors.Is(err, common.ErrorForbidden) {
			return err
		}
		return fmt.Errorf("error writing record: %w", err)
	}
	return nil
}

// Read returns the stored JSON object, or found=false when absent. readerID
// is the signed-in account asking.
func (s *RecordService) Read(ctx context.Context, readerID, collection, id string) ([]byte, bool, error) {
	if collection == "" || id == "" {
		return nil, false, common.ErrorInvalidArgument
	}
	rec, err := s.repomanager.Records(s.db).Get(ctx, collection, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("error reading record: %w", err)
	}
	if privateCollections[collection] && rec.OwnerID != readerID {
		return nil, false, common.ErrorForbidden
	}
	return rec.Data, true, nil
}

func resolvePlaceholders(doc map[string]any, stamp string) {
	for k, v := range doc {
		switch x := v.(type) {
		case string:
			if x == rpc.ServerTimestampPlaceholder {
				doc[k] = stamp
			}
		case map[string]any:
			resolvePlaceholders(x, stamp)
		}
	}
}
