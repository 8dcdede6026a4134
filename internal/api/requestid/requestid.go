// Package requestid carries the per-request identifier through the context
// so handlers and the request logger report the same id.
package requestid

import "context"

type ctxKey struct{}

// With returns a context carrying the request id.
func With(ctx context.Context, id uint64) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// From returns the request id carried by the context, if any.
func From(ctx context.Context) (uint64, bool) {
	id, ok := ctx.Value(ctxKey{}).(uint64)
	return id, ok
}
