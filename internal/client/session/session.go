// Package session mirrors the signed-in AccountProfile into local storage so
// the UI can restore it on start without a network round trip.
package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/clinicauth/internal/client/models"
	"github.com/dmitrijs2005/clinicauth/internal/logging"
)

// Key is the local storage key holding the session.
const Key = "user"

// Storage is a local synchronous key/value store.
type Storage interface {
	// Get returns (nil, nil) when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

type Store struct {
	storage Storage
	log     logging.Logger
}

func NewStore(storage Storage, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop{}
	}
	return &Store{storage: storage, log: log.With("module", "session")}
}

// Save overwrites the stored session with p.
func (s *Store) Save(ctx context.Context, p *models.AccountProfile) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := s.storage.Set(ctx, Key, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Load returns the stored profile, or nil when there is none. Unreadable or
// malformed values are treated as absent.
func (s *Store) Load(ctx context.Context) *models.AccountProfile {
	data, err := s.storage.Get(ctx, Key)
	if err != nil {
		s.log.Warn(ctx, "session read failed", "error", err)
		return nil
	}
	if len(data) == 0 {
		return nil
	}

	var p models.AccountProfile
	if err := json.Unmarshal(data, &p); err != nil {
		s.log.Warn(ctx, "stored session is malformed, ignoring", "error", err)
		return nil
	}
	if p.ID == "" {
		s.log.Warn(ctx, "stored session has no account id, ignoring")
		return nil
	}
	return &p
}

// Clear removes the stored session. Clearing an absent session succeeds.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, Key); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}
