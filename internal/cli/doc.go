// Package cli provides the interactive sharejoy command-line client.
//
// It wires configuration, the key/value backend, the credential store and
// the auth service behind a small REPL. On start the persisted current-user
// pointer decides whether the prompt opens logged in.
//
// Commands:
//   - register, login, logout
//   - whoami, passwd, delete
//   - users (approvers only)
//   - help, exit | quit
//
// The REPL is started via App.Run(ctx), which blocks until the user exits,
// stdin closes or ctx is cancelled. Every command runs under
// config.OperationTimeout.
package cli
