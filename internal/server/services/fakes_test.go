package services

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/dbx"
	"github.com/dmitrijs2005/clinicauth/internal/server/config"
	"github.com/dmitrijs2005/clinicauth/internal/server/models"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/records"
	"github.com/dmitrijs2005/clinicauth/internal/server/repositories/refreshtokens"
	"golang.org/x/crypto/bcrypt"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

type fakeAccountsRepo struct {
	mu        sync.Mutex
	byEmail   map[string]*models.Account
	createErr error
	getErr    error
}

func newFakeAccounts() *fakeAccountsRepo {
	return &fakeAccountsRepo{byEmail: map[string]*models.Account{}}
}

func (f *fakeAccountsRepo) add(t *testing.T, id, email, password string, disabled bool) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	f.byEmail[email] = &models.Account{ID: id, Email: email, PasswordHash: hash, Disabled: disabled}
}

func (f *fakeAccountsRepo) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byEmail[a.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	a.CreatedAt = time.Now()
	f.byEmail[a.Email] = a
	return a, nil
}

func (f *fakeAccountsRepo) GetByEmail(_ context.Context, email string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	a, ok := f.byEmail[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return a, nil
}

func (f *fakeAccountsRepo) GetByID(_ context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, a := range f.byEmail {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccountsRepo) SetDisabled(_ context.Context, email string, disabled bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.byEmail[email]
	if !ok {
		return common.ErrorNotFound
	}
	a.Disabled = disabled
	return nil
}

type fakeRefreshRepo struct {
	mu        sync.Mutex
	tokens    map[string]*models.RefreshToken
	findErr   error
	delErr    error
	createErr error
	revoked   []string
}

func newFakeRefresh() *fakeRefreshRepo {
	return &fakeRefreshRepo{tokens: map[string]*models.RefreshToken{}}
}

func (f *fakeRefreshRepo) Create(_ context.Context, accountID, token string, validity time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.tokens[token] = &models.RefreshToken{AccountID: accountID, Token: token, Expires: time.Now().Add(validity)}
	return nil
}

func (f *fakeRefreshRepo) Find(_ context.Context, token string) (*models.RefreshToken, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	rt, ok := f.tokens[token]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return rt, nil
}

func (f *fakeRefreshRepo) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	delete(f.tokens, token)
	return nil
}

func (f *fakeRefreshRepo) Revoke(_ context.Context, accountID, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.delErr != nil {
		return f.delErr
	}
	if rt, ok := f.tokens[token]; ok && rt.AccountID == accountID {
		delete(f.tokens, token)
		f.revoked = append(f.revoked, token)
	}
	return nil
}

type fakeRecordsRepo struct {
	mu      sync.Mutex
	records map[string]*models.Record
	err     error
}

func newFakeRecords() *fakeRecordsRepo {
	return &fakeRecordsRepo{records: map[string]*models.Record{}}
}

func (f *fakeRecordsRepo) Upsert(_ context.Context, r *models.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	key := r.Collection + "/" + r.ID
	if prev, ok := f.records[key]; ok {
		if prev.OwnerID != r.OwnerID {
			return common.ErrorForbidden
		}
		r.CreatedAt = prev.CreatedAt
	} else {
		r.CreatedAt = r.UpdatedAt
	}
	f.records[key] = r
	return nil
}

func (f *fakeRecordsRepo) Get(_ context.Context, collection, id string) (*models.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.records[collection+"/"+id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return r, nil
}

type fakeRepoManager struct {
	a *fakeAccountsRepo
	r *fakeRefreshRepo
	d *fakeRecordsRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error       { return nil }
func (m *fakeRepoManager) Accounts(db dbx.DBTX) accounts.Repository           { return m.a }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository { return m.r }
func (m *fakeRepoManager) Records(db dbx.DBTX) records.Repository             { return m.d }

func newAccountService(t *testing.T, db *sql.DB, rm *fakeRepoManager) *AccountService {
	t.Helper()
	cfg := &config.Config{
		SecretKey:                    "k",
		AccessTokenValidityDuration:  time.Hour,
		RefreshTokenValidityDuration: 2 * time.Hour,
	}
	s := NewAccountService(db, rm, cfg)
	s.bcryptCost = bcrypt.MinCost
	return s
}
