// Package cli provides the interactive docvault command-line client.
//
// It wires configuration, the local secret store, the session layer and the
// documents API into a small REPL. On start the stored session is restored,
// so a user who logged in earlier is not asked for credentials again.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command set.
package cli
