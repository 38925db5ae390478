// Package actorctx carries the authenticated identity and the request id on
// a context.Context, so code below the HTTP layer can read them without gin.
package actorctx

import "context"

type ctxKey string

const (
	keyActor     ctxKey = "actor"
	keyRequestID ctxKey = "request_id"
)

// Actor is the identity recovered from a verified bearer token.
type Actor struct {
	ID    string
	Email string
	Role  string
}

func With(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, keyActor, a)
}

func From(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(keyActor).(Actor)
	return a, ok && a.ID != ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, keyRequestID, id)
}

func RequestIDFrom(ctx context.Context) (string, bool) {
	v, ok := ctx.Value(keyRequestID).(string)
	return v, ok && v != ""
}
