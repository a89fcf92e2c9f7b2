package grpc

import (
	"context"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/clinicauth/internal/client/client"
	"github.com/dmitrijs2005/clinicauth/internal/client/documents"
	"github.com/dmitrijs2005/clinicauth/internal/client/models"
	clientservices "github.com/dmitrijs2005/clinicauth/internal/client/services"
	"github.com/dmitrijs2005/clinicauth/internal/client/session"
	"github.com/dmitrijs2005/clinicauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

func TestRun_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:0", logging.Nop{}, newFakeAccounts(), newFakeRecords())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx)
	}()

	select {
	case err := <-done:
		t.Fatalf("server exited too early: %v", err)
	case <-time.After(150 * time.Millisecond):
	}

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned error on graceful stop: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop within timeout after context cancel")
	}
}

func TestRun_ReturnsErrorOnBadAddress(t *testing.T) {
	t.Parallel()

	srv := NewGRPCServer("127.0.0.1:99999", logging.Nop{}, newFakeAccounts(), newFakeRecords())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := srv.Run(ctx); err == nil {
		t.Fatal("expected error from Run on bad address, got nil")
	}
}

// TestClientRoundTrip drives the client orchestration layer against this
// server over an in-process connection.
func TestClientRoundTrip(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	gs := NewGRPCServer("bufnet", logging.Nop{}, newFakeAccounts(), newFakeRecords())
	srv := gs.NewServer()
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	storage, err := session.NewFileStorage(filepath.Join(t.TempDir(), "storage.json"))
	require.NoError(t, err)

	identity, err := client.NewIdentity("passthrough:///bufnet", storage, logging.Nop{},
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = identity.Close() })

	store := session.NewStore(storage, logging.Nop{})
	accounts := clientservices.NewAccounts(identity, documents.NewGRPC(identity.Conn()), store, logging.Nop{})
	ctx := context.Background()

	profile, err := accounts.Register(ctx, "Asha", "asha@x.com", "secret1", "Patient")
	require.NoError(t, err)
	assert.Equal(t, models.RolePatient, profile.Role)
	assert.False(t, profile.CreatedAt.IsZero())

	_, err = accounts.Login(ctx, "asha@x.com", "wrong")
	assert.EqualError(t, err, "Invalid email or password")

	got, err := accounts.Login(ctx, "asha@x.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", got.Name)
	assert.True(t, accounts.IsAuthenticated(ctx))
	assert.NotNil(t, store.Load(ctx))

	require.NoError(t, accounts.Logout(ctx))
	assert.Nil(t, store.Load(ctx))
	_, signedIn := identity.CurrentAccount()
	assert.False(t, signedIn)
}
