package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/clinicauth/internal/client/provider"
	"github.com/dmitrijs2005/clinicauth/internal/client/session"
	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/logging"
	"github.com/dmitrijs2005/clinicauth/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// identityRPC is the subset of rpc.IdentityClient used here.
type identityRPC interface {
	CreateAccount(ctx context.Context, in *rpc.CreateAccountRequest, opts ...grpc.CallOption) (*rpc.SessionResponse, error)
	VerifyCredentials(ctx context.Context, in *rpc.VerifyCredentialsRequest, opts ...grpc.CallOption) (*rpc.SessionResponse, error)
	RefreshSession(ctx context.Context, in *rpc.RefreshSessionRequest, opts ...grpc.CallOption) (*rpc.SessionResponse, error)
	SignOut(ctx context.Context, in *rpc.SignOutRequest, opts ...grpc.CallOption) (*rpc.SignOutResponse, error)
	Ping(ctx context.Context, in *rpc.PingRequest, opts ...grpc.CallOption) (*rpc.PingResponse, error)
}

// Identity is a provider.IdentityProvider backed by the clinicauth server.
type Identity struct {
	endpointURL string
	conn        *grpc.ClientConn
	client      identityRPC
	storage     session.Storage
	log         logging.Logger
	events      provider.Broadcaster

	mu   sync.RWMutex
	cred *Credential
	// provisional marks a session opened by CreateAccount; it is neither
	// announced nor persisted.
	provisional bool

	// refreshMu serializes token refreshes and the initial session
	// resolution, since every refresh rotates the refresh token.
	refreshMu sync.Mutex
	// persistMu keeps storage in step with cred: whoever installs a
	// session persists it before the next install is written.
	persistMu sync.Mutex
}

var _ provider.IdentityProvider = (*Identity)(nil)

// NewIdentity dials endpointURL. The connection is lazy; no network I/O
// happens until the first call.
func NewIdentity(endpointURL string, storage session.Storage, log logging.Logger, opts ...grpc.DialOption) (*Identity, error) {
	if log == nil {
		log = logging.Nop{}
	}
	i := &Identity{
		endpointURL: endpointURL,
		storage:     storage,
		log:         log.With("module", "identity"),
	}

	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(i.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(endpointURL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", endpointURL, err)
	}
	i.conn = conn
	i.client = rpc.NewIdentityClient(conn)
	return i, nil
}

// Conn returns the connection, with the access-token interceptor installed,
// for other clients of the same server.
func (i *Identity) Conn() grpc.ClientConnInterface { return i.conn }

func (i *Identity) Close() error {
	return i.conn.Close()
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func (i *Identity) accessToken() string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.cred == nil {
		return ""
	}
	return i.cred.AccessToken
}

func (i *Identity) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if method == rpc.IdentityRefreshSessionMethod {
		return invoker(ctx, method, req, reply, cc, opts...)
	}

	sent := i.accessToken()
	err := invoker(withAccessToken(ctx, sent), method, req, reply, cc, opts...)
	if err == nil || !rpc.IsTokenExpired(err) || sent == "" {
		return err
	}

	token, rerr := i.refreshAccessToken(ctx, sent)
	if rerr != nil {
		i.log.Warn(ctx, "token refresh failed", "method", method, "error", rerr)
		return err
	}
	return invoker(withAccessToken(ctx, token), method, req, reply, cc, opts...)
}

// refreshAccessToken exchanges the refresh token for a new pair unless
// another caller already replaced the expired access token.
func (i *Identity) refreshAccessToken(ctx context.Context, expired string) (string, error) {
	i.refreshMu.Lock()
	defer i.refreshMu.Unlock()

	i.mu.RLock()
	cred, provisional := i.cred, i.provisional
	i.mu.RUnlock()
	if cred == nil {
		return "", ErrNoSession
	}
	if cred.AccessToken != expired {
		return cred.AccessToken, nil
	}

	resp, err := i.client.RefreshSession(ctx, &rpc.RefreshSessionRequest{RefreshToken: cred.RefreshToken})
	if err != nil {
		return "", MapError(err)
	}
	next := credentialFrom(resp)
	if !i.replaceCredential(cred, next) {
		// A sign-in or sign-out finished while the refresh was in flight.
		if token := i.accessToken(); token != "" {
			return token, nil
		}
		return "", ErrNoSession
	}
	if !provisional {
		i.persistIfCurrent(ctx, next)
	}
	return next.AccessToken, nil
}

func credentialFrom(resp *rpc.SessionResponse) *Credential {
	c := &Credential{
		AccountID:    resp.AccountID,
		Email:        resp.Email,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}
	if resp.ExpiresAt != nil {
		c.ExpiresAt = resp.ExpiresAt.AsTime()
	}
	return c
}

func (i *Identity) setCredential(c *Credential, provisional bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.cred = c
	i.provisional = provisional
}

// replaceCredential installs next only while prev is still the session.
func (i *Identity) replaceCredential(prev, next *Credential) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cred != prev {
		return false
	}
	i.cred = next
	return true
}

// persistIfCurrent saves c unless another session replaced it first.
func (i *Identity) persistIfCurrent(ctx context.Context, c *Credential) {
	i.persistMu.Lock()
	defer i.persistMu.Unlock()

	i.mu.RLock()
	current := i.cred == c
	i.mu.RUnlock()
	if !current {
		return
	}
	if err := i.saveCredential(ctx, c); err != nil {
		i.log.Warn(ctx, "refreshed credential not persisted", "error", err)
	}
}

// adoptRestored installs a credential restored from storage unless a
// sign-in completed meanwhile. It returns the session now in effect.
func (i *Identity) adoptRestored(next *Credential) (*Credential, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.cred != nil && !i.provisional {
		return i.cred, false
	}
	i.cred = next
	i.provisional = false
	return next, true
}

func (i *Identity) CreateAccount(ctx context.Context, email, password string) (string, error) {
	resp, err := i.client.CreateAccount(ctx, &rpc.CreateAccountRequest{Email: email, Password: password})
	if err != nil {
		return "", MapError(err)
	}
	i.setCredential(credentialFrom(resp), true)
	return resp.AccountID, nil
}

func (i *Identity) VerifyCredentials(ctx context.Context, email, password string) (string, error) {
	resp, err := i.client.VerifyCredentials(ctx, &rpc.VerifyCredentialsRequest{Email: email, Password: password})
	if err != nil {
		return "", MapError(err)
	}
	cred := credentialFrom(resp)
	i.persistMu.Lock()
	i.setCredential(cred, false)
	if err := i.saveCredential(ctx, cred); err != nil {
		i.log.Warn(ctx, "credential not persisted", "account_id", cred.AccountID, "error", err)
	}
	i.persistMu.Unlock()

	i.events.Publish(provider.AuthEvent{Kind: provider.SignedIn, AccountID: cred.AccountID})
	return cred.AccountID, nil
}

// SignOut revokes the refresh token on the server and forgets the session.
// A server that no longer knows the session counts as signed out.
func (i *Identity) SignOut(ctx context.Context) error {
	i.mu.RLock()
	cred := i.cred
	i.mu.RUnlock()

	if cred != nil {
		_, err := i.client.SignOut(ctx, &rpc.SignOutRequest{RefreshToken: cred.RefreshToken})
		if err != nil && status.Code(err) != codes.Unauthenticated {
			return MapError(err)
		}
	}

	i.persistMu.Lock()
	i.setCredential(nil, false)
	if err := i.deleteCredential(ctx); err != nil {
		i.log.Warn(ctx, "persisted credential not removed", "error", err)
	}
	i.persistMu.Unlock()
	i.events.Publish(provider.AuthEvent{Kind: provider.SignedOut})
	return nil
}

func (i *Identity) CurrentAccount() (string, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.cred == nil {
		return "", false
	}
	return i.cred.AccountID, true
}

// Subscribe resolves the persisted session, if any, as the first event.
func (i *Identity) Subscribe(ctx context.Context) (<-chan provider.AuthEvent, func()) {
	return i.events.Subscribe(ctx, i.resolveSession)
}

func (i *Identity) resolveSession(ctx context.Context) provider.AuthEvent {
	signedOut := provider.AuthEvent{Kind: provider.SignedOut}

	i.refreshMu.Lock()
	defer i.refreshMu.Unlock()

	i.mu.RLock()
	cred, provisional := i.cred, i.provisional
	i.mu.RUnlock()
	if cred != nil && !provisional {
		return provider.AuthEvent{Kind: provider.SignedIn, AccountID: cred.AccountID}
	}

	stored, err := i.loadCredential(ctx)
	if err != nil {
		i.log.Warn(ctx, "persisted credential unreadable", "error", err)
		return signedOut
	}
	if stored == nil {
		return signedOut
	}

	resp, err := i.client.RefreshSession(ctx, &rpc.RefreshSessionRequest{RefreshToken: stored.RefreshToken})
	if err != nil {
		if status.Code(err) == codes.Unauthenticated {
			i.log.Info(ctx, "persisted session no longer valid", "account_id", stored.AccountID)
			if derr := i.deleteCredential(ctx); derr != nil {
				i.log.Warn(ctx, "persisted credential not removed", "error", derr)
			}
		} else {
			i.log.Warn(ctx, "session check failed", "error", err)
		}
		return signedOut
	}

	next := credentialFrom(resp)
	current, adopted := i.adoptRestored(next)
	if !adopted {
		i.log.Info(ctx, "restored session superseded by sign-in", "restored", next.AccountID, "account_id", current.AccountID)
		return provider.AuthEvent{Kind: provider.SignedIn, AccountID: current.AccountID}
	}
	i.persistIfCurrent(ctx, next)
	return provider.AuthEvent{Kind: provider.SignedIn, AccountID: next.AccountID}
}

func (i *Identity) Ping(ctx context.Context) error {
	resp, err := i.client.Ping(ctx, &rpc.PingRequest{})
	if err != nil {
		return MapError(err)
	}
	if resp.Status != "OK" {
		return ErrUnavailable
	}
	return nil
}

// MapError turns a gRPC failure into a *provider.Error.
func MapError(err error) error {
	if err == nil {
		return nil
	}
	if reason, ok := rpc.ReasonFrom(err); ok {
		return provider.NewError(reason, err)
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("rpc error: %w", err)
	}
	return provider.NewError(rpc.ReasonForCode(st.Code()), err)
}
