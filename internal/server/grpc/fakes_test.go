package grpc

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/server/auth"
	"github.com/dmitrijs2005/clinicauth/internal/server/services"
)

var testSecret = []byte("k")

// fakeAccounts keeps accounts in memory and issues real JWTs so the
// interceptor path is exercised end to end.
type fakeAccounts struct {
	mu        sync.Mutex
	passwords map[string]string
	ids       map[string]string
	refresh   map[string]string
	signedOut []string
	err       error
	accessTTL time.Duration
}

func newFakeAccounts() *fakeAccounts {
	return &fakeAccounts{
		passwords: map[string]string{},
		ids:       map[string]string{},
		refresh:   map[string]string{},
		accessTTL: time.Hour,
	}
}

func (f *fakeAccounts) session(id, email string) (*services.Session, error) {
	access, err := auth.GenerateToken(id, testSecret, f.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh := "r-" + id + "-" + time.Now().Format(time.RFC3339Nano)
	f.refresh[refresh] = id
	return &services.Session{AccountID: id, Email: email, AccessToken: access, RefreshToken: refresh, ExpiresAt: time.Now().Add(f.accessTTL)}, nil
}

func (f *fakeAccounts) CreateAccount(_ context.Context, email, password string) (*services.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if _, ok := f.passwords[email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	id := "acc-" + email
	f.passwords[email] = password
	f.ids[email] = id
	return f.session(id, email)
}

func (f *fakeAccounts) VerifyCredentials(_ context.Context, email, password string) (*services.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.passwords[email]; !ok || p != password {
		return nil, common.ErrorUnauthorized
	}
	return f.session(f.ids[email], email)
}

func (f *fakeAccounts) RefreshSession(_ context.Context, token string) (*services.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, ok := f.refresh[token]
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	delete(f.refresh, token)
	for email, v := range f.ids {
		if v == id {
			return f.session(id, email)
		}
	}
	return nil, common.ErrorUnauthorized
}

func (f *fakeAccounts) SignOut(_ context.Context, accountID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if f.refresh[token] == accountID {
		delete(f.refresh, token)
	}
	f.signedOut = append(f.signedOut, accountID)
	return nil
}

func (f *fakeAccounts) AccountIDFromToken(token string) (string, error) {
	return auth.GetAccountIDFromToken(token, testSecret)
}

type fakeRecords struct {
	mu    sync.Mutex
	data  map[string][]byte
	owner map[string]string
	err   error
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{data: map[string][]byte{}, owner: map[string]string{}}
}

func (f *fakeRecords) Write(_ context.Context, ownerID, collection, id string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	key := collection + "/" + id
	if o, ok := f.owner[key]; ok && o != ownerID {
		return common.ErrorForbidden
	}
	f.owner[key] = ownerID
	f.data[key] = data
	return nil
}

func (f *fakeRecords) Read(_ context.Context, readerID, collection, id string) ([]byte, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, false, f.err
	}
	key := collection + "/" + id
	d, ok := f.data[key]
	if ok && collection == "users" && f.owner[key] != readerID {
		return nil, false, common.ErrorForbidden
	}
	return d, ok, nil
}
