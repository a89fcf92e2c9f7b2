package services

import (
	"github.com/dmitrijs2005/clinicauth/internal/client/provider"
	"github.com/dmitrijs2005/clinicauth/internal/common"
)

// MsgGeneric is shown for every code without a dedicated message.
const MsgGeneric = "An error occurred. Please try again."

const msgInvalidCredentials = "Invalid email or password"

var providerMessages = map[string]string{
	common.CodeEmailAlreadyInUse:   "Email is already registered",
	common.CodeInvalidEmail:        "Invalid email address",
	common.CodeOperationNotAllowed: "Email/password accounts are not enabled",
	common.CodeWeakPassword:        "Password is too weak (min 6 characters)",
	common.CodeUserDisabled:        "This account has been disabled",
	common.CodeUserNotFound:        msgInvalidCredentials,
	common.CodeWrongPassword:       msgInvalidCredentials,
	common.CodeInvalidCredential:   msgInvalidCredentials,
	common.CodeTooManyRequests:     "Too many attempts. Please try again later",
	common.CodeNetworkFailed:       "Network error. Please check your connection",
}

// Translate maps a provider error code to a user-facing message. Unknown
// codes, including the empty code, get MsgGeneric.
func Translate(code string) string {
	if msg, ok := providerMessages[code]; ok {
		return msg
	}
	return MsgGeneric
}

// MessageFor translates the provider code carried by err.
func MessageFor(err error) string {
	code, _ := provider.CodeOf(err)
	return Translate(code)
}

func providerError(err error) *ProviderError {
	code, _ := provider.CodeOf(err)
	return &ProviderError{Code: code, Message: Translate(code), Err: err}
}
