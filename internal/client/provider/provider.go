// Package provider declares the contract the account layer needs from an
// identity provider and a document store. Implementations live in
// provider/memory (in process), client (gRPC identity) and documents
// (gRPC, Cloud Datastore, S3).
package provider

import (
	"context"
	"errors"
)

// IdentityProvider verifies credentials and owns the remote session.
type IdentityProvider interface {
	// CreateAccount registers email/password and returns the new account id.
	// The account is signed in for the rest of the process so its profile
	// can be written, but no SignedIn event is published for it.
	CreateAccount(ctx context.Context, email, password string) (string, error)

	// VerifyCredentials signs an existing account in and returns its id.
	VerifyCredentials(ctx context.Context, email, password string) (string, error)

	// SignOut ends the remote session.
	SignOut(ctx context.Context) error

	// CurrentAccount reports the signed-in account, if any.
	CurrentAccount() (string, bool)

	// Subscribe delivers the provider's view of the session: once after the
	// provider has resolved any persisted session, then on every sign-in and
	// sign-out. The channel is closed after unsubscribe is called or ctx ends.
	Subscribe(ctx context.Context) (<-chan AuthEvent, func())
}

// DocumentStore keeps records keyed by collection and id.
type DocumentStore interface {
	// WriteRecord replaces the record. Fields set to ServerTimestamp are
	// stamped by the store.
	WriteRecord(ctx context.Context, collection, id string, doc Document) error

	// ReadRecord returns ErrRecordNotFound when there is no such record.
	ReadRecord(ctx context.Context, collection, id string) (Document, error)
}

// ErrRecordNotFound is returned by DocumentStore.ReadRecord for absent records.
var ErrRecordNotFound = errors.New("record not found")

type AuthEventKind int

const (
	SignedOut AuthEventKind = iota
	SignedIn
)

func (k AuthEventKind) String() string {
	if k == SignedIn {
		return "signed-in"
	}
	return "signed-out"
}

// AuthEvent is one change of the provider's session.
type AuthEvent struct {
	Kind AuthEventKind
	// AccountID is set for SignedIn.
	AccountID string
}
