// Package cli provides the interactive Holy Culture command-line client.
//
// It wires configuration, the credential vault, the API gateway and the
// session manager behind a small REPL. On start it restores any saved
// session, watches connectivity in the background and then executes user
// commands until exit.
//
// Key features:
//   - Register / Login / Logout, with local rate limiting
//   - Password reset by email and password change
//   - Profile viewing and editing
//   - Biometric (device check) sign-in
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher and runREPL for details.
package cli
