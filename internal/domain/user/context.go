package user

import (
	"context"

	"github.com/google/uuid"
)

type actorKey struct{}

// WithActor attaches the verified caller identity to ctx.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

// ActorFromContext returns the caller identity, ok=false for anonymous requests.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	if !ok || a.UserID == uuid.Nil {
		return Actor{}, false
	}
	return a, true
}
