package grpc

import (
	"context"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/rpc"
	"github.com/dmitrijs2005/clinicauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

func sessionResponse(s *services.Session) *rpc.SessionResponse {
	return &rpc.SessionResponse{
		AccountID:    s.AccountID,
		Email:        s.Email,
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		ExpiresAt:    timestamppb.New(s.ExpiresAt),
	}
}

func (s *GRPCServer) CreateAccount(ctx context.Context, req *rpc.CreateAccountRequest) (*rpc.SessionResponse, error) {

	s.logger.Info(ctx, "Account creation request")

	sess, err := s.accounts.CreateAccount(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Warn(ctx, "account not created", "error", err)
		return nil, statusFor(err)
	}

	s.logger.Info(ctx, "Account created", "account_id", sess.AccountID)
	return sessionResponse(sess), nil
}

func (s *GRPCServer) VerifyCredentials(ctx context.Context, req *rpc.VerifyCredentialsRequest) (*rpc.SessionResponse, error) {

	sess, err := s.accounts.VerifyCredentials(ctx, req.Email, req.Password)
	if err != nil {
		s.logger.Info(ctx, "sign-in refused", "error", err)
		return nil, statusFor(err)
	}

	s.logger.Info(ctx, "Signed in", "account_id", sess.AccountID)
	return sessionResponse(sess), nil
}

func (s *GRPCServer) RefreshSession(ctx context.Context, req *rpc.RefreshSessionRequest) (*rpc.SessionResponse, error) {

	sess, err := s.accounts.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		s.logger.Debug(ctx, "refresh refused", "error", err)
		return nil, statusFor(err)
	}

	return sessionResponse(sess), nil
}

func (s *GRPCServer) SignOut(ctx context.Context, req *rpc.SignOutRequest) (*rpc.SignOutResponse, error) {
	accountID, ok := accountIDFrom(ctx)
	if !ok {
		return nil, rpc.StatusWithReason(codes.Unauthenticated, "unauthorized", common.CodeInvalidCredential)
	}

	if err := s.accounts.SignOut(ctx, accountID, req.RefreshToken); err != nil {
		s.logger.Error(ctx, "sign-out failed", "account_id", accountID, "error", err)
		return nil, statusFor(err)
	}

	s.logger.Info(ctx, "Signed out", "account_id", accountID)
	return &rpc.SignOutResponse{}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *rpc.PingRequest) (*rpc.PingResponse, error) {

	return &rpc.PingResponse{Status: "OK"}, nil

}

func (s *GRPCServer) WriteRecord(ctx context.Context, req *rpc.WriteRecordRequest) (*rpc.WriteRecordResponse, error) {
	accountID, ok := accountIDFrom(ctx)
	if !ok {
		return nil, rpc.StatusWithReason(codes.Unauthenticated, "unauthorized", common.CodeInvalidCredential)
	}

	if req.Data == nil {
		return nil, statusFor(common.ErrorInvalidArgument)
	}
	data, err := protojson.Marshal(req.Data)
	if err != nil {
		return nil, statusFor(common.ErrorInvalidArgument)
	}

	if err := s.records.Write(ctx, accountID, req.Collection, req.ID, data); err != nil {
		s.logger.Warn(ctx, "record not written", "collection", req.Collection, "id", req.ID, "error", err)
		return nil, statusFor(err)
	}

	return &rpc.WriteRecordResponse{}, nil
}

func (s *GRPCServer) ReadRecord(ctx context.Context, req *rpc.ReadRecordRequest) (*rpc.ReadRecordResponse, error) {
	accountID, ok := accountIDFrom(ctx)
	if !ok {
		return nil, rpc.StatusWithReason(codes.Unauthenticated, "unauthorized", common.CodeInvalidCredential)
	}

	data, found, err := s.records.Read(ctx, accountID, req.Collection, req.ID)
	if err != nil {
		s.logger.Warn(ctx, "record not read", "collection", req.Collection, "id", req.ID, "error", err)
		return nil, statusFor(err)
	}

	if !found {
		return &rpc.ReadRecordResponse{}, nil
	}

	doc := &structpb.Struct{}
	if err := protojson.Unmarshal(data, doc); err != nil {
		s.logger.Error(ctx, "stored record unreadable", "collection", req.Collection, "id", req.ID, "error", err)
		return nil, statusFor(err)
	}

	return &rpc.ReadRecordResponse{Found: true, Data: doc}, nil
}
