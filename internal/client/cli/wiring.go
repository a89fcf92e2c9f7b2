package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/clinicauth/internal/client/client"
	"github.com/dmitrijs2005/clinicauth/internal/client/config"
	"github.com/dmitrijs2005/clinicauth/internal/client/documents"
	"github.com/dmitrijs2005/clinicauth/internal/client/provider"
	"github.com/dmitrijs2005/clinicauth/internal/client/provider/memory"
	"github.com/dmitrijs2005/clinicauth/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/clinicauth/internal/client/session"
	"github.com/dmitrijs2005/clinicauth/internal/client/storage"
	"github.com/dmitrijs2005/clinicauth/internal/logging"
)

// Seams for tests.
var (
	newDatastore = func(ctx context.Context, cfg documents.DatastoreConfig) (provider.DocumentStore, func() error, error) {
		ds, err := documents.NewDatastore(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return ds, ds.Close, nil
	}
	newS3 = func(ctx context.Context, cfg documents.S3Config) (provider.DocumentStore, error) {
		s, err := documents.NewS3(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
)

// providers is everything the account service is built from, plus what
// has to be released on exit.
type providers struct {
	storage  session.Storage
	identity provider.IdentityProvider
	docs     provider.DocumentStore
	pinger   pinger
	closers  []func() error
}

func (p *providers) close() error {
	var first error
	for i := len(p.closers) - 1; i >= 0; i-- {
		if err := p.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	p.closers = nil
	return first
}

func openStorage(ctx context.Context, cfg *config.Config, p *providers) error {
	if cfg.SessionStorage == config.SessionFile {
		fs, err := session.NewFileStorage(cfg.SessionFile)
		if err != nil {
			return err
		}
		p.storage = fs
		return nil
	}

	db, err := storage.Open(ctx, cfg.DatabasePath)
	if err != nil {
		return err
	}
	p.closers = append(p.closers, db.Close)
	p.storage = metadata.NewSQLiteRepository(db)
	return nil
}

func openDocuments(ctx context.Context, cfg *config.Config, id *client.Identity, p *providers) error {
	switch cfg.DocumentBackend {
	case config.BackendDatastore:
		ds, closeFn, err := newDatastore(ctx, documents.DatastoreConfig{
			ProjectID: cfg.Datastore.ProjectID,
			Namespace: cfg.Datastore.Namespace,
			Endpoint:  cfg.Datastore.Endpoint,
		})
		if err != nil {
			return err
		}
		p.docs = ds
		p.closers = append(p.closers, closeFn)
	case config.BackendS3:
		s, err := newS3(ctx, documents.S3Config{
			Bucket:       cfg.S3.Bucket,
			Prefix:       cfg.S3.Prefix,
			Region:       cfg.S3.Region,
			BaseEndpoint: cfg.S3.Endpoint,
			AccessKey:    cfg.S3.AccessKey,
			SecretKey:    cfg.S3.SecretKey,
		})
		if err != nil {
			return err
		}
		p.docs = s
	default:
		p.docs = documents.NewGRPC(id.Conn())
	}
	return nil
}

// openProviders builds local storage, the identity provider and the
// document store named by cfg. On error everything opened so far is closed.
func openProviders(ctx context.Context, cfg *config.Config, log logging.Logger) (*providers, error) {
	p := &providers{}

	if err := openStorage(ctx, cfg, p); err != nil {
		return nil, fmt.Errorf("local storage: %w", err)
	}

	if cfg.ProviderMode == config.ProviderMemory {
		p.identity = memory.NewIdentity()
		p.docs = memory.NewDocuments()
		return p, nil
	}

	id, err := client.NewIdentity(cfg.ServerEndpointAddr, p.storage, log)
	if err != nil {
		_ = p.close()
		return nil, err
	}
	p.identity = id
	p.pinger = id
	p.closers = append(p.closers, id.Close)

	if err := openDocuments(ctx, cfg, id, p); err != nil {
		_ = p.close()
		return nil, fmt.Errorf("document store: %w", err)
	}
	return p, nil
}
