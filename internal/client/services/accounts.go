// Package services contains application services for the clinicauth client.
// This file defines the account service: register, login, logout, profile
// lookup and the local session mirror.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/client/models"
	"github.com/dmitrijs2005/clinicauth/internal/client/provider"
	"github.com/dmitrijs2005/clinicauth/internal/logging"
)

// AccountService defines the account operations the UI drives.
//
// Contract:
//   - Register: validate locally, create the account, write its profile.
//   - Login: verify credentials, load the profile, mirror it locally.
//   - Logout: end the remote session, then drop the local mirror.
//   - ForgetSession: drop the local mirror only.
//   - GetProfile: read a profile; absence is (nil, nil).
//   - ResolveSession: GetProfile plus refreshing the mirror when found.
//   - RestoreSession: read the local mirror, no network.
//   - IsAuthenticated: remote session OR local mirror.
//   - Subscribe: the identity provider's auth events.
type AccountService interface {
	Register(ctx context.Context, name, email, password, role string) (*models.AccountProfile, error)
	Login(ctx context.Context, email, password string) (*models.AccountProfile, error)
	Logout(ctx context.Context) error
	ForgetSession(ctx context.Context) error
	GetProfile(ctx context.Context, accountID string) (*models.AccountProfile, error)
	ResolveSession(ctx context.Context, accountID string) (*models.AccountProfile, error)
	RestoreSession(ctx context.Context) *models.AccountProfile
	IsAuthenticated(ctx context.Context) bool
	Subscribe(ctx context.Context) (<-chan provider.AuthEvent, func())
}

// SessionStore is the local session mirror.
type SessionStore interface {
	Save(ctx context.Context, p *models.AccountProfile) error
	Load(ctx context.Context) *models.AccountProfile
	Clear(ctx context.Context) error
}

// Accounts is the AccountService over injected providers.
type Accounts struct {
	identity provider.IdentityProvider
	docs     provider.DocumentStore
	session  SessionStore
	log      logging.Logger

	// now stands in for the store's timestamp when the profile cannot be
	// read back after registration.
	now func() time.Time
}

var _ AccountService = (*Accounts)(nil)

func NewAccounts(identity provider.IdentityProvider, docs provider.DocumentStore, session SessionStore, log logging.Logger) *Accounts {
	if log == nil {
		log = logging.Nop{}
	}
	return &Accounts{
		identity: identity,
		docs:     docs,
		session:  session,
		log:      log.With("module", "accounts"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates the account and its profile record. An account created
// at the provider whose profile write then fails is left in place and
// logged; the caller gets the translated write error.
func (s *Accounts) Register(ctx context.Context, name, email, password, role string) (*models.AccountProfile, error) {
	if err := validateRegistration(name, email, password, role, nil); err != nil {
		return nil, err
	}

	id, err := s.identity.CreateAccount(ctx, email, password)
	if err != nil {
		s.log.Info(ctx, "create account failed", "error", err)
		return nil, providerError(err)
	}

	r, _ := models.ParseRole(role)
	doc := provider.Document{
		models.FieldUID:       id,
		models.FieldName:      name,
		models.FieldEmail:     strings.ToLower(email),
		models.FieldRole:      string(r),
		models.FieldCreatedAt: provider.ServerTimestamp,
	}
	if err := s.docs.WriteRecord(ctx, models.UsersCollection, id, doc); err != nil {
		s.log.Error(ctx, "profile write failed, account left without profile", "account_id", id, "error", err)
		return nil, providerError(err)
	}

	profile := profileFromDocument(id, doc)
	stored, err := s.docs.ReadRecord(ctx, models.UsersCollection, id)
	if err == nil {
		if ts, ok := stored.Time(models.FieldCreatedAt); ok {
			profile.CreatedAt = ts
		}
	} else {
		s.log.Warn(ctx, "profile read-back failed", "account_id", id, "error", err)
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = s.now()
	}

	s.log.Info(ctx, "account registered", "account_id", id, "role", profile.Role)
	return profile, nil
}

// Login verifies credentials and mirrors the profile locally.
func (s *Accounts) Login(ctx context.Context, email, password string) (*models.AccountProfile, error) {
	if err := validateLogin(email, password); err != nil {
		return nil, err
	}

	id, err := s.identity.VerifyCredentials(ctx, email, password)
	if err != nil {
		s.log.Info(ctx, "login rejected", "error", err)
		return nil, providerError(err)
	}

	doc, err := s.docs.ReadRecord(ctx, models.UsersCollection, id)
	if errors.Is(err, provider.ErrRecordNotFound) {
		s.log.Error(ctx, "account has no profile record", "account_id", id)
		return nil, &DataConsistencyError{AccountID: id, Detail: MsgUserDataNotFound}
	}
	if err != nil {
		return nil, providerError(err)
	}

	profile := profileFromDocument(id, doc)
	if err := s.session.Save(ctx, profile); err != nil {
		s.log.Warn(ctx, "session mirror not saved", "account_id", id, "error", err)
	}
	return profile, nil
}

// Logout signs out remotely and clears the local mirror. When the remote
// call fails the mirror is left untouched.
func (s *Accounts) Logout(ctx context.Context) error {
	if err := s.identity.SignOut(ctx); err != nil {
		s.log.Warn(ctx, "sign out failed", "error", err)
		code, _ := provider.CodeOf(err)
		return &ProviderError{Code: code, Message: MsgLogoutFailed, Err: err}
	}
	if err := s.session.Clear(ctx); err != nil {
		return &ProviderError{Message: MsgLogoutFailed, Err: err}
	}
	return nil
}

// ForgetSession clears the local mirror without contacting the provider.
func (s *Accounts) ForgetSession(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return fmt.Errorf("forget session: %w", err)
	}
	return nil
}

// GetProfile reads the profile of accountID. A missing record is not an
// error.
func (s *Accounts) GetProfile(ctx context.Context, accountID string) (*models.AccountProfile, error) {
	doc, err := s.docs.ReadRecord(ctx, models.UsersCollection, accountID)
	if errors.Is(err, provider.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		code, _ := provider.CodeOf(err)
		return nil, &ProviderError{Code: code, Message: MsgGetUserFailed, Err: err}
	}
	return profileFromDocument(accountID, doc), nil
}

// ResolveSession is GetProfile for an account the provider reported as
// signed in; a found profile also refreshes the local mirror. Events for an
// account that is no longer current resolve to nil.
func (s *Accounts) ResolveSession(ctx context.Context, accountID string) (*models.AccountProfile, error) {
	if !s.isCurrent(accountID) {
		s.log.Debug(ctx, "ignoring auth event for account that is not signed in", "account_id", accountID)
		return nil, nil
	}
	p, err := s.GetProfile(ctx, accountID)
	if err != nil || p == nil {
		return p, err
	}
	if err := s.session.Save(ctx, p); err != nil {
		s.log.Warn(ctx, "session mirror not saved", "account_id", accountID, "error", err)
	}
	// a sign out may have landed while the profile was being read
	if !s.isCurrent(accountID) {
		if err := s.session.Clear(ctx); err != nil {
			s.log.Warn(ctx, "session mirror not cleared", "account_id", accountID, "error", err)
		}
		return nil, nil
	}
	return p, nil
}

func (s *Accounts) isCurrent(accountID string) bool {
	cur, ok := s.identity.CurrentAccount()
	return ok && cur == accountID
}

func (s *Accounts) RestoreSession(ctx context.Context) *models.AccountProfile {
	return s.session.Load(ctx)
}

// IsAuthenticated is true when the provider has a current account or a
// session is mirrored locally, even if that mirror is stale.
func (s *Accounts) IsAuthenticated(ctx context.Context) bool {
	if _, ok := s.identity.CurrentAccount(); ok {
		return true
	}
	return s.session.Load(ctx) != nil
}

func (s *Accounts) Subscribe(ctx context.Context) (<-chan provider.AuthEvent, func()) {
	return s.identity.Subscribe(ctx)
}

func profileFromDocument(id string, doc provider.Document) *models.AccountProfile {
	p := &models.AccountProfile{
		ID:    id,
		Name:  doc.String(models.FieldName),
		Email: strings.ToLower(doc.String(models.FieldEmail)),
		Role:  models.Role(strings.ToLower(doc.String(models.FieldRole))),
	}
	if uid := doc.String(models.FieldUID); uid != "" {
		p.ID = uid
	}
	if ts, ok := doc.Time(models.FieldCreatedAt); ok {
		p.CreatedAt = ts
	}
	return p
}
