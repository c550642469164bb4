package roster

import "context"

type contextKey int

const ctxKeyActor contextKey = iota

// WithActor returns a context carrying the identity performing assignment
// mutations. Services record it as the granted_by audit field.
func WithActor(ctx context.Context, actorID string) context.Context {
	return context.WithValue(ctx, ctxKeyActor, actorID)
}

// ActorFromContext returns the actor set by WithActor, or "".
func ActorFromContext(ctx context.Context) string {
	v, ok := ctx.Value(ctxKeyActor).(string)
	if !ok {
		return ""
	}
	return v
}
