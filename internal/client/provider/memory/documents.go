package memory

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/client/provider"
)

// Documents is a DocumentStore keeping records in a map.
type Documents struct {
	mu      sync.RWMutex
	records map[string]provider.Document

	// now stamps ServerTimestamp fields.
	now func() time.Time
}

func NewDocuments() *Documents {
	return &Documents{
		records: make(map[string]provider.Document),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func recordKey(collection, id string) string {
	return collection + "/" + id
}

func (s *Documents) WriteRecord(ctx context.Context, collection, id string, doc provider.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	resolved := provider.ResolveTimestamps(doc, s.now())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[recordKey(collection, id)] = resolved
	return nil
}

func (s *Documents) ReadRecord(ctx context.Context, collection, id string) (provider.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.records[recordKey(collection, id)]
	if !ok {
		return nil, provider.ErrRecordNotFound
	}
	return doc.Clone(), nil
}
