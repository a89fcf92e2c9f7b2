package provider

import "errors"

// Error carries a provider error code such as "auth/wrong-password".
type Error struct {
	Code string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with code.
func NewError(code string, err error) *Error {
	return &Error{Code: code, Err: err}
}

// CodeOf returns the provider code found in err's chain.
func CodeOf(err error) (string, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Code, true
	}
	return "", false
}
