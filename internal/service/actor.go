package service

import "context"

type actorKey struct{}

// WithActor attaches the operator performing the request. The core keeps no
// session state; every call carries its identity in ctx.
func WithActor(ctx context.Context, operator string) context.Context {
	if operator == "" {
		return ctx
	}
	return context.WithValue(ctx, actorKey{}, operator)
}

// ActorFrom returns the operator attached by WithActor, or "".
func ActorFrom(ctx context.Context) string {
	op, _ := ctx.Value(actorKey{}).(string)
	return op
}
