// Package logging defines the structured-logging interface used by the Bill
// Board client. SlogLogger wraps log/slog; Nop discards everything and is
// what tests pass to services.
package logging

import "context"

// Logger is a context-aware, structured logger. args are key/value pairs:
//
//	log.Warn(ctx, "toggle failed, reloading saved bills", "bill_id", id, "error", err)
//
// Tokens and passwords must never be passed as values.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes args, e.g. the
	// "component" of a service.
	With(args ...any) Logger
}
