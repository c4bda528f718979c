// Package client contains the client-side building blocks that talk to the
// Bill Board backend.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface): the
//     caller's profile, saved bills, personalized recommendations, account
//     deletion, plus the public search, profile-list and health endpoints.
//  2. A concrete HTTP/JSON implementation (see HTTPClient) that injects the
//     bearer token, tags requests with an X-Request-ID, enforces a request
//     timeout and maps HTTP status codes to sentinel errors.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations) that opens the
//     SQLite bill catalog and applies embedded goose migrations.
//
// # Error Handling
//
// Common conditions are exposed as sentinel errors that callers can match with
// errors.Is: ErrUnavailable, ErrUnauthorized, ErrNotFound. Other non-2xx
// responses surface as *APIError carrying the status and the server's detail.
//
// Concurrency & Contexts
//
// HTTPClient is safe for concurrent use. All operations accept context.Context
// and honor cancellation in addition to the configured timeout.
package client
