// Package principal carries the resolved request identity through a request's context.
package principal

import "context"

// Principal is the identity resolved by the authentication gate for one request.
// It lives only in that request's context and is never persisted.
type Principal struct {
	UserID string
	Email  string
}

type contextKey struct{ name string }

var principalKey = contextKey{"principal"}

// WithContext returns a context carrying p. Handlers and the persistence scope
// read it back via FromContext.
func WithContext(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// FromContext returns the principal from ctx and true if set; otherwise a zero
// Principal and false (anonymous request).
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}
