// Package memory provides an in-process identity provider and document
// store. It backs the CLI's offline mode and the account layer's tests.
package memory

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/dmitrijs2005/clinicauth/internal/client/provider"
	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type account struct {
	id       string
	hash     []byte
	disabled bool
}

// Identity is an IdentityProvider keeping accounts in a map. Passwords are
// stored as bcrypt hashes.
type Identity struct {
	mu       sync.RWMutex
	accounts map[string]*account // by lowercased email
	current  string
	events   provider.Broadcaster

	// newID is swapped in tests for deterministic ids.
	newID func() string
}

func NewIdentity() *Identity {
	return &Identity{
		accounts: make(map[string]*account),
		newID:    uuid.NewString,
	}
}

func (p *Identity) CreateAccount(ctx context.Context, email, password string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(key); err != nil {
		return "", provider.NewError(common.CodeInvalidEmail, err)
	}
	if len(password) < common.MinPasswordLength {
		return "", provider.NewError(common.CodeWeakPassword, common.ErrorWeakPassword)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.accounts[key]; ok {
		return "", provider.NewError(common.CodeEmailAlreadyInUse, common.ErrorAlreadyExists)
	}
	id := p.newID()
	p.accounts[key] = &account{id: id, hash: hash}
	p.current = id
	return id, nil
}

func (p *Identity) VerifyCredentials(ctx context.Context, email, password string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(email))

	p.mu.RLock()
	acc, ok := p.accounts[key]
	p.mu.RUnlock()

	if !ok {
		return "", provider.NewError(common.CodeInvalidCredential, common.ErrorUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword(acc.hash, []byte(password)); err != nil {
		return "", provider.NewError(common.CodeInvalidCredential, common.ErrorUnauthorized)
	}
	if acc.disabled {
		return "", provider.NewError(common.CodeUserDisabled, common.ErrorDisabled)
	}

	p.mu.Lock()
	p.current = acc.id
	p.mu.Unlock()

	p.events.Publish(provider.AuthEvent{Kind: provider.SignedIn, AccountID: acc.id})
	return acc.id, nil
}

func (p *Identity) SignOut(ctx context.Context) error {
	p.mu.Lock()
	p.current = ""
	p.mu.Unlock()

	p.events.Publish(provider.AuthEvent{Kind: provider.SignedOut})
	return nil
}

func (p *Identity) CurrentAccount() (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current, p.current != ""
}

func (p *Identity) Subscribe(ctx context.Context) (<-chan provider.AuthEvent, func()) {
	return p.events.Subscribe(ctx, func(context.Context) provider.AuthEvent {
		if id, ok := p.CurrentAccount(); ok {
			return provider.AuthEvent{Kind: provider.SignedIn, AccountID: id}
		}
		return provider.AuthEvent{Kind: provider.SignedOut}
	})
}

// Disable marks the account registered under email as disabled.
func (p *Identity) Disable(email string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	acc, ok := p.accounts[strings.ToLower(email)]
	if !ok {
		return common.ErrorNotFound
	}
	acc.disabled = true
	return nil
}
