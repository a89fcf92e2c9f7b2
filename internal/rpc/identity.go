package rpc

import (
	"context"

	"google.golang.org/grpc"
)

const (
	IdentityServiceName = "clinicauth.v1.Identity"

	IdentityCreateAccountMethod     = "/" + IdentityServiceName + "/CreateAccount"
	IdentityVerifyCredentialsMethod = "/" + IdentityServiceName + "/VerifyCredentials"
	IdentityRefreshSessionMethod    = "/" + IdentityServiceName + "/RefreshSession"
	IdentitySignOutMethod           = "/" + IdentityServiceName + "/SignOut"
	IdentityPingMethod              = "/" + IdentityServiceName + "/Ping"
)

// IdentityServer is implemented by the provider server.
type IdentityServer interface {
	CreateAccount(context.Context, *CreateAccountRequest) (*SessionResponse, error)
	VerifyCredentials(context.Context, *VerifyCredentialsRequest) (*SessionResponse, error)
	RefreshSession(context.Context, *RefreshSessionRequest) (*SessionResponse, error)
	SignOut(context.Context, *SignOutRequest) (*SignOutResponse, error)
	Ping(context.Context, *PingRequest) (*PingResponse, error)
}

// RegisterIdentityServer attaches srv to s.
func RegisterIdentityServer(s grpc.ServiceRegistrar, srv IdentityServer) {
	s.RegisterService(&IdentityServiceDesc, srv)
}

var IdentityServiceDesc = grpc.ServiceDesc{
	ServiceName: IdentityServiceName,
	HandlerType: (*IdentityServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "CreateAccount",
			Handler: unary(IdentityCreateAccountMethod, func(srv any, ctx context.Context, req *CreateAccountRequest) (message, error) {
				return srv.(IdentityServer).CreateAccount(ctx, req)
			}),
		},
		{
			MethodName: "VerifyCredentials",
			Handler: unary(IdentityVerifyCredentialsMethod, func(srv any, ctx context.Context, req *VerifyCredentialsRequest) (message, error) {
				return srv.(IdentityServer).VerifyCredentials(ctx, req)
			}),
		},
		{
			MethodName: "RefreshSession",
			Handler: unary(IdentityRefreshSessionMethod, func(srv any, ctx context.Context, req *RefreshSessionRequest) (message, error) {
				return srv.(IdentityServer).RefreshSession(ctx, req)
			}),
		},
		{
			MethodName: "SignOut",
			Handler: unary(IdentitySignOutMethod, func(srv any, ctx context.Context, req *SignOutRequest) (message, error) {
				return srv.(IdentityServer).SignOut(ctx, req)
			}),
		},
		{
			MethodName: "Ping",
			Handler: unary(IdentityPingMethod, func(srv any, ctx context.Context, req *PingRequest) (message, error) {
				return srv.(IdentityServer).Ping(ctx, req)
			}),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "clinicauth/v1/identity",
}

// IdentityClient is the typed client side of the Identity service.
type IdentityClient struct {
	cc grpc.ClientConnInterface
}

func NewIdentityClient(cc grpc.ClientConnInterface) *IdentityClient {
	return &IdentityClient{cc: cc}
}

func (c *IdentityClient) CreateAccount(ctx context.Context, in *CreateAccountRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, IdentityCreateAccountMethod, in, opts)
}

func (c *IdentityClient) VerifyCredentials(ctx context.Context, in *VerifyCredentialsRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, IdentityVerifyCredentialsMethod, in, opts)
}

func (c *IdentityClient) RefreshSession(ctx context.Context, in *RefreshSessionRequest, opts ...grpc.CallOption) (*SessionResponse, error) {
	return invoke[SessionResponse](ctx, c.cc, IdentityRefreshSessionMethod, in, opts)
}

func (c *IdentityClient) SignOut(ctx context.Context, in *SignOutRequest, opts ...grpc.CallOption) (*SignOutResponse, error) {
	return invoke[SignOutResponse](ctx, c.cc, IdentitySignOutMethod, in, opts)
}

func (c *IdentityClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, IdentityPingMethod, in, opts)
}
