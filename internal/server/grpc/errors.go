package grpc

import (
	"errors"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"github.com/dmitrijs2005/clinicauth/internal/rpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// statusFor maps service errors onto gRPC statuses carrying provider codes.
// Anything unrecognized becomes a bare Internal status.
func statusFor(err error) error {
	switch {
	case errors.Is(err, common.ErrorInvalidEmail):
		return rpc.StatusWithReason(codes.InvalidArgument, "invalid email", common.CodeInvalidEmail)
	case errors.Is(err, common.ErrorWeakPassword):
		return rpc.StatusWithReason(codes.InvalidArgument, "weak password", common.CodeWeakPassword)
	case errors.Is(err, common.ErrorAlreadyExists):
		return rpc.StatusWithReason(codes.AlreadyExists, "email already in use", common.CodeEmailAlreadyInUse)
	case errors.Is(err, common.ErrorUnauthorized), errors.Is(err, common.ErrRefreshTokenExpired):
		return rpc.StatusWithReason(codes.Unauthenticated, "unauthorized", common.CodeInvalidCredential)
	case errors.Is(err, common.ErrorDisabled):
		return rpc.StatusWithReason(codes.Unauthenticated, "account disabled", common.CodeUserDisabled)
	case errors.Is(err, common.ErrorThrottled):
		return rpc.StatusWithReason(codes.ResourceExhausted, "too many attempts", common.CodeTooManyRequests)
	case errors.Is(err, common.ErrorForbidden):
		return rpc.StatusWithReason(codes.PermissionDenied, "permission denied", common.CodePermissionDenied)
	case errors.Is(err, common.ErrorInvalidArgument):
		return rpc.StatusWithReason(codes.InvalidArgument, "invalid argument", common.CodeInvalidArgument)
	default:
		return status.Error(codes.Internal, "internal error")
	}
}
