package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/client/provider"
	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func next(t *testing.T, ch <-chan provider.AuthEvent) provider.AuthEvent {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return provider.AuthEvent{}
}

func TestIdentity_CreateAndVerify(t *testing.T) {
	ctx := context.Background()
	p := NewIdentity()
	p.newID = func() string { return "u1" }

	id, err := p.CreateAccount(ctx, "Asha@X.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)

	cur, ok := p.CurrentAccount()
	require.True(t, ok)
	assert.Equal(t, "u1", cur)

	id, err = p.VerifyCredentials(ctx, "asha@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "u1", id)
}

func TestIdentity_CreateAccountErrors(t *testing.T) {
	ctx := context.Background()
	p := NewIdentity()
	_, err := p.CreateAccount(ctx, "a@b.co", "secret1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		code     string
	}{
		{"duplicate", "A@B.co", "secret1", common.CodeEmailAlreadyInUse},
		{"bad email", "nope", "secret1", common.CodeInvalidEmail},
		{"weak", "c@d.co", "123", common.CodeWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.CreateAccount(ctx, tt.email, tt.password)
			code, ok := provider.CodeOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestIdentity_VerifySameCodeForUnknownAndWrong(t *testing.T) {
	ctx := context.Background()
	p := NewIdentity()
	_, err := p.CreateAccount(ctx, "x@x.com", "secret1")
	require.NoError(t, err)

	_, errWrong := p.VerifyCredentials(ctx, "x@x.com", "wrong")
	_, errUnknown := p.VerifyCredentials(ctx, "nosuch@x.com", "anything")

	c1, _ := provider.CodeOf(errWrong)
	c2, _ := provider.CodeOf(errUnknown)
	assert.Equal(t, common.CodeInvalidCredential, c1)
	assert.Equal(t, c1, c2)
}

func TestIdentity_Disabled(t *testing.T) {
	ctx := context.Background()
	p := NewIdentity()
	_, err := p.CreateAccount(ctx, "x@x.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, p.Disable("x@x.com"))

	_, err = p.VerifyCredentials(ctx, "x@x.com", "secret1")
	code, _ := provider.CodeOf(err)
	assert.Equal(t, common.CodeUserDisabled, code)
}

func TestIdentity_SubscribeEvents(t *testing.T) {
	ctx := context.Background()
	p := NewIdentity()
	p.newID = func() string { return "u1" }

	ch, unsub := p.Subscribe(ctx)
	defer unsub()
	assert.Equal(t, provider.SignedOut, next(t, ch).Kind)

	_, err := p.CreateAccount(ctx, "x@x.com", "secret1")
	require.NoError(t, err)

	_, err = p.VerifyCredentials(ctx, "x@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, provider.AuthEvent{Kind: provider.SignedIn, AccountID: "u1"}, next(t, ch))

	require.NoError(t, p.SignOut(ctx))
	assert.Equal(t, provider.SignedOut, next(t, ch).Kind)
	_, ok := p.CurrentAccount()
	assert.False(t, ok)
}

func TestDocuments_WriteReadStampsTime(t *testing.T) {
	ctx := context.Background()
	s := NewDocuments()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	err := s.WriteRecord(ctx, "users", "u1", provider.Document{
		"name":      "Asha",
		"createdAt": provider.ServerTimestamp,
	})
	require.NoError(t, err)

	doc, err := s.ReadRecord(ctx, "users", "u1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", doc.String("name"))
	ts, ok := doc.Time("createdAt")
	require.True(t, ok)
	assert.Equal(t, now, ts)

	_, err = s.ReadRecord(ctx, "users", "nope")
	assert.ErrorIs(t, err, provider.ErrRecordNotFound)
}
