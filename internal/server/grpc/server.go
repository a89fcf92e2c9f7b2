// Package grpc exposes the provider services over gRPC using the
// hand-declared descriptors from internal/rpc.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/clinicauth/internal/logging"
	"github.com/dmitrijs2005/clinicauth/internal/rpc"
	"github.com/dmitrijs2005/clinicauth/internal/server/services"
	"google.golang.org/grpc"
)

type accountService interface {
	CreateAccount(ctx context.Context, email, password string) (*services.Session, error)
	VerifyCredentials(ctx context.Context, email, password string) (*services.Session, error)
	RefreshSession(ctx context.Context, refreshToken string) (*services.Session, error)
	SignOut(ctx context.Context, accountID, refreshToken string) error
	AccountIDFromToken(token string) (string, error)
}

type recordService interface {
	Write(ctx context.Context, ownerID, collection, id string, data []byte) error
	Read(ctx context.Context, readerID, collection, id string) ([]byte, bool, error)
}

// GRPCServer implements rpc.IdentityServer and rpc.DocumentsServer.
type GRPCServer struct {
	address  string
	accounts accountService
	records  recordService
	logger   logging.Logger
}

var (
	_ rpc.IdentityServer  = (*GRPCServer)(nil)
	_ rpc.DocumentsServer = (*GRPCServer)(nil)
)

func NewGRPCServer(a string, l logging.Logger, as accountService, rs recordService) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		accounts: as,
		records:  rs,
	}
}

// NewServer builds a grpc.Server with the auth interceptor and both
// services registered.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)
	rpc.RegisterIdentityServer(srv, s)
	rpc.RegisterDocumentsServer(srv, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
