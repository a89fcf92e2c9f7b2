// Package cli provides the interactive clinicauth command-line client.
//
// It wires configuration, local storage, the identity provider and the
// document store into an account service and a view controller, then runs a
// REPL that renders the controller's view (login, register or the signed-in
// dashboard) and feeds form input back into it.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
