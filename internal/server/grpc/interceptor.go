package grpc

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
)

type ctxKey string

const accountIDKey ctxKey = "accountID"

// protectedMethods need a valid access token.
var protectedMethods = map[string]bool{
	rpc.IdentitySignOutMethod:      true,
	rpc.DocumentsWriteRecordMethod: true,
	rpc.DocumentsReadRecordMethod:  true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if !protectedMethods[info.FullMethod] {
		return handler(ctx, req)
	}

	var accessToken string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		values := md.Get(common.AccessTokenHeaderName)
		if len(values) > 0 {
			accessToken = values[0]
		}
	}
	if len(accessToken) == 0 {
		return nil, rpc.StatusWithReason(codes.Unauthenticated, "missing token", common.CodeInvalidCredential)
	}

	accountID, err := s.accounts.AccountIDFromToken(accessToken)
	if errors.Is(err, common.ErrTokenExpired) {
		return nil, rpc.StatusWithReason(codes.Unauthenticated, "token expired", common.CodeTokenExpired)
	}
	if err != nil {
		return nil, rpc.StatusWithReason(codes.Unauthenticated, "invalid token", common.CodeInvalidCredential)
	}

	return handler(context.WithValue(ctx, accountIDKey, accountID), req)
}

func accountIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(accountIDKey).(string)
	return id, ok && id != ""
}
