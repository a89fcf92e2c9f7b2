package services

import "errors"

// Sentinels matched with errors.Is against the typed errors below.
var (
	ErrValidation       = errors.New("validation failed")
	ErrProvider         = errors.New("provider call failed")
	ErrUserDataNotFound = errors.New("user data not found")
)

// ValidationError is a local, pre-network form check failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ProviderError is a failed remote call. Message is already translated for
// display; Code is the provider code when one was reported.
type ProviderError struct {
	Code    string
	Message string
	Err     error
}

func (e *ProviderError) Error() string { return e.Message }

func (e *ProviderError) Unwrap() error { return e.Err }

func (e *ProviderError) Is(target error) bool { return target == ErrProvider }

// DataConsistencyError means the credentials were accepted but the account
// has no profile record. Users see the generic message; Detail and
// AccountID are for logs and callers matching with errors.Is.
type DataConsistencyError struct {
	AccountID string
	Detail    string
}

func (e *DataConsistencyError) Error() string { return MsgGeneric }

func (e *DataConsistencyError) Is(target error) bool {
	return target == ErrUserDataNotFound || target == ErrProvider
}

// Fixed user-facing messages.
const (
	MsgFillAllFields     = "Please fill in all fields"
	MsgPasswordTooShort  = "Password must be at least 6 characters"
	MsgPasswordsMismatch = "Passwords do not match"
	MsgInvalidEmail      = "Please enter a valid email address"
	MsgInvalidRole       = "Please select a valid role"
	MsgLogoutFailed      = "Failed to logout"
	MsgGetUserFailed     = "Failed to get user data"
	MsgUserDataNotFound  = "User data not found"
	MsgRegistered        = "Registration successful! Please login."
	MsgLoggedIn          = "Login successful! Redirecting..."
)
