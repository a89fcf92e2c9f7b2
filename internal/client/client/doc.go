// Package client is the gRPC implementation of the identity provider used
// by the clinicauth CLI.
//
// # Overview
//
// Identity talks to the clinicauth.v1.Identity service. It
//  1. injects the access token into outgoing calls through a unary
//     interceptor and transparently refreshes it when the server reports
//     it expired;
//  2. persists the refresh credential in local storage so a restarted
//     client can resolve the previous session on its first Subscribe;
//  3. publishes sign-in and sign-out as provider.AuthEvents;
//  4. maps gRPC status codes and ErrorInfo reasons to provider codes.
//
// The same connection is shared with the document store client (see
// Identity.Conn) so document calls carry the session's access token.
//
// # Error Handling
//
// Failed calls return a *provider.Error whose Code is the server's reason
// or, when the server sent none, a code derived from the gRPC status.
// ErrUnavailable is returned by Ping for unhealthy servers.
package client
