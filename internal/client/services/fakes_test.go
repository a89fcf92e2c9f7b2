package services

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/clinicauth/internal/client/models"
	"github.com/dmitrijs2005/clinicauth/internal/client/provider"
)

// fakeIdentity records calls and returns canned results.
type fakeIdentity struct {
	CreateID   string
	CreateErr  error
	VerifyID   string
	VerifyErr  error
	SignOutErr error
	Current    string

	CreateCalls  int
	VerifyCalls  int
	SignOutCalls int

	LastEmail    string
	LastPassword string
}

func (f *fakeIdentity) CreateAccount(_ context.Context, email, password string) (string, error) {
	f.CreateCalls++
	f.LastEmail, f.LastPassword = email, password
	if f.CreateErr != nil {
		return "", f.CreateErr
	}
	f.Current = f.CreateID
	return f.CreateID, nil
}

func (f *fakeIdentity) VerifyCredentials(_ context.Context, email, password string) (string, error) {
	f.VerifyCalls++
	f.LastEmail, f.LastPassword = email, password
	if f.VerifyErr != nil {
		return "", f.VerifyErr
	}
	f.Current = f.VerifyID
	return f.VerifyID, nil
}

func (f *fakeIdentity) SignOut(context.Context) error {
	f.SignOutCalls++
	if f.SignOutErr != nil {
		return f.SignOutErr
	}
	f.Current = ""
	return nil
}

func (f *fakeIdentity) CurrentAccount() (string, bool) { return f.Current, f.Current != "" }

func (f *fakeIdentity) Subscribe(ctx context.Context) (<-chan provider.AuthEvent, func()) {
	ch := make(chan provider.AuthEvent)
	var once sync.Once
	return ch, func() { once.Do(func() { close(ch) }) }
}

func (f *fakeIdentity) calls() int { return f.CreateCalls + f.VerifyCalls + f.SignOutCalls }

// fakeDocs keeps records in a map; errors can be injected per operation.
type fakeDocs struct {
	records  map[string]provider.Document
	WriteErr error
	ReadErr  error
	// stamp replaces ServerTimestamp on write when set
	stamp any

	Writes int
	Reads  int
}

func newFakeDocs() *fakeDocs {
	return &fakeDocs{records: map[string]provider.Document{}}
}

func (f *fakeDocs) WriteRecord(_ context.Context, collection, id string, doc provider.Document) error {
	f.Writes++
	if f.WriteErr != nil {
		return f.WriteErr
	}
	stored := doc.Clone()
	for k, v := range stored {
		if provider.IsServerTimestamp(v) && f.stamp != nil {
			stored[k] = f.stamp
		}
	}
	f.records[collection+"/"+id] = stored
	return nil
}

func (f *fakeDocs) ReadRecord(_ context.Context, collection, id string) (provider.Document, error) {
	f.Reads++
	if f.ReadErr != nil {
		return nil, f.ReadErr
	}
	doc, ok := f.records[collection+"/"+id]
	if !ok {
		return nil, provider.ErrRecordNotFound
	}
	return doc.Clone(), nil
}

// fakeSession is an in-memory SessionStore.
type fakeSession struct {
	profile  *models.AccountProfile
	SaveErr  error
	ClearErr error

	Saves  int
	Clears int
}

func (f *fakeSession) Save(_ context.Context, p *models.AccountProfile) error {
	f.Saves++
	if f.SaveErr != nil {
		return f.SaveErr
	}
	cp := *p
	f.profile = &cp
	return nil
}

func (f *fakeSession) Load(context.Context) *models.AccountProfile {
	if f.profile == nil {
		return nil
	}
	cp := *f.profile
	return &cp
}

func (f *fakeSession) Clear(context.Context) error {
	f.Clears++
	if f.ClearErr != nil {
		return f.ClearErr
	}
	f.profile = nil
	return nil
}
