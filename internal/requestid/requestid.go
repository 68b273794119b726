// Package requestid carries the per-request correlation ID through context so
// the gateway's outgoing upstream calls repeat the ID of the request that
// caused them.
package requestid

import "context"

const Header = "X-Request-ID"

type ctxKey struct{}

func NewContext(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// FromContext returns the request ID, or "" outside a request.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}
