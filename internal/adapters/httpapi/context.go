package httpapi

import (
	"context"

	"github.com/ghumakkad/trip-share-api/internal/platform/auth"
)

type contextKey int

const actorKey contextKey = iota

// WithActor returns a context carrying the authenticated actor.
func WithActor(ctx context.Context, a auth.Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext extracts the authenticated actor, if present.
func ActorFromContext(ctx context.Context) (auth.Actor, bool) {
	a, ok := ctx.Value(actorKey).(auth.Actor)
	return a, ok
}
