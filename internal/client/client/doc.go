// Package client contains the client's transport and local storage
// bootstrap.
//
// # Overview
//
// The package provides:
//  1. HTTPClient, the authenticated request pipeline. Every call attaches
//     the stored bearer token, and every failure is turned into exactly one
//     error notification. A 401 also clears the session and navigates to the
//     login page.
//  2. HealthClient, a gRPC health probe used to show whether the server is
//     reachable.
//  3. InitDatabase and RunMigrations, which open the local sqlite database
//     and apply the embedded goose migrations.
//
// # Error Handling
//
// A call that produced no result returns either an error wrapping
// common.ErrNetwork (no response) or an *APIError (non-2xx response). Both
// can be matched with errors.Is / errors.As.
package client
