package documents

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/datastore"
	"github.com/dmitrijs2005/clinicauth/internal/client/provider"
	"google.golang.org/api/option"
)

// newDatastoreClient is a seam for tests.
var newDatastoreClient = func(ctx context.Context, projectID string, opts ...option.ClientOption) (*datastore.Client, error) {
	return datastore.NewClient(ctx, projectID, opts...)
}

// DatastoreConfig selects the project and namespace. Endpoint is for the
// emulator; DATASTORE_EMULATOR_HOST is honoured as well.
type DatastoreConfig struct {
	ProjectID string
	Namespace string
	Endpoint  string
}

// Datastore stores each collection as an entity kind with the record id as
// the key name.
type Datastore struct {
	client    *datastore.Client
	namespace string
	now       func() time.Time
}

var _ provider.DocumentStore = (*Datastore)(nil)

func NewDatastore(ctx context.Context, cfg DatastoreConfig) (*Datastore, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}
	c, err := newDatastoreClient(ctx, cfg.ProjectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("datastore client: %w", err)
	}
	return &Datastore{
		client:    c,
		namespace: cfg.Namespace,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func (s *Datastore) Close() error { return s.client.Close() }

func (s *Datastore) key(collection, id string) *datastore.Key {
	key := datastore.NameKey(collection, id, nil)
	key.Namespace = s.namespace
	return key
}

func (s *Datastore) WriteRecord(ctx context.Context, collection, id string, doc provider.Document) error {
	props := toProperties(provider.ResolveTimestamps(doc, s.now()))
	if _, err := s.client.Put(ctx, s.key(collection, id), &props); err != nil {
		return fmt.Errorf("datastore put %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *Datastore) ReadRecord(ctx context.Context, collection, id string) (provider.Document, error) {
	var props datastore.PropertyList
	err := s.client.Get(ctx, s.key(collection, id), &props)
	if errors.Is(err, datastore.ErrNoSuchEntity) {
		return nil, provider.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("datastore get %s/%s: %w", collection, id, err)
	}
	return fromProperties(props), nil
}

// toProperties maps a document onto Datastore properties. Strings longer
// than the indexed limit are stored unindexed.
func toProperties(doc provider.Document) datastore.PropertyList {
	props := make(datastore.PropertyList, 0, len(doc))
	for k, v := range doc {
		p := datastore.Property{Name: k, Value: normalizeValue(v)}
		if s, ok := v.(string); ok && len(s) > 1500 {
			p.NoIndex = true
		}
		props = append(props, p)
	}
	return props
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case int:
		return int64(x)
	case int32:
		return int64(x)
	case float32:
		return float64(x)
	case time.Time:
		return x.UTC()
	}
	return v
}

func fromProperties(props datastore.PropertyList) provider.Document {
	doc := make(provider.Document, len(props))
	for _, p := range props {
		doc[p.Name] = p.Value
	}
	return doc
}
