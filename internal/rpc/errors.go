package rpc

import (
	"errors"

	"github.com/dmitrijs2005/clinicauth/internal/common"
	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// StatusWithReason builds a status error carrying reason as an ErrorInfo.
// If the detail cannot be attached the bare status is returned.
func StatusWithReason(code codes.Code, msg, reason string) error {
	st := status.New(code, msg)
	withInfo, err := st.WithDetails(&errdetails.ErrorInfo{
		Reason: reason,
		Domain: common.ErrorDomain,
	})
	if err != nil {
		return st.Err()
	}
	return withInfo.Err()
}

// ReasonFrom returns the ErrorInfo reason attached to err, if any.
func ReasonFrom(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	st, ok := status.FromError(err)
	if !ok {
		return "", false
	}
	for _, d := range st.Details() {
		if info, ok := d.(*errdetails.ErrorInfo); ok && info.GetDomain() == common.ErrorDomain {
			return info.GetReason(), true
		}
	}
	return "", false
}

// ReasonForCode is the fallback reason when a status carries no ErrorInfo.
func ReasonForCode(code codes.Code) string {
	switch code {
	case codes.Unauthenticated, codes.PermissionDenied:
		return common.CodeInvalidCredential
	case codes.Unavailable, codes.DeadlineExceeded:
		return common.CodeNetworkFailed
	case codes.ResourceExhausted:
		return common.CodeTooManyRequests
	case codes.AlreadyExists:
		return common.CodeEmailAlreadyInUse
	default:
		return ""
	}
}

// IsTokenExpired reports whether err is an expired access token rejection.
func IsTokenExpired(err error) bool {
	reason, ok := ReasonFrom(err)
	if ok {
		return reason == common.CodeTokenExpired
	}
	return errors.Is(err, common.ErrTokenExpired)
}
