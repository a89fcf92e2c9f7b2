// Package common contains shared constants and sentinel errors used across
// clinicauth components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// ErrorDomain is the google.rpc.ErrorInfo domain attached to provider errors
// produced by the clinicauth server.
const ErrorDomain = "clinicauth"

// MinPasswordLength is the shortest password accepted on registration, both
// by the client-side pre-check and by the server.
const MinPasswordLength = 6
