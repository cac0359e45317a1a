package logger

import (
	"context"
	"log/slog"
)

type contextKey struct{}

// turnIDKey is the context key for the chat turn ID.
var turnIDKey = contextKey{}

// WithTurnID returns a new context carrying the ID of the agent message
// a chat turn resolves into.
func WithTurnID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, turnIDKey, id)
}

// TurnID extracts the turn ID from the context.
// Returns an empty string if none is set.
func TurnID(ctx context.Context) string {
	id, _ := ctx.Value(turnIDKey).(string)
	return id
}

// From returns l annotated with the turn ID from ctx, if any.
func From(ctx context.Context, l *slog.Logger) *slog.Logger {
	if id := TurnID(ctx); id != "" {
		return l.With("turn_id", id)
	}
	return l
}
