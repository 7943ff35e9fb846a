// Package cli provides the interactive GophAuth command-line client.
//
// It wires configuration, the local session database, the authenticated
// request pipeline, the notification bus and an interactive REPL. The REPL
// keeps a current page that follows the same route guard as the server, so
// a lost session always lands the user on the login page.
//
// Key features:
//   - Register / Login / Logout
//   - Show and edit the profile, change the password, deactivate the account
//   - Toasts printed as they appear on the bus
//   - Background connectivity watcher using the gRPC health service
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
