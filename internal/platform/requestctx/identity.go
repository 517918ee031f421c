// Package requestctx carries per-request values through context.
package requestctx

import "context"

// Identity is the verified caller identity attached by the auth middleware.
type Identity struct {
	UserID string
	Email  string
}

// identityContextKey is the context key for authenticated caller identity.
type identityContextKey struct{}

// WithIdentity stores a verified identity in context.
func WithIdentity(ctx context.Context, identity Identity) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, identityContextKey{}, identity)
}

// IdentityFromContext returns the identity stored in context, if any.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	if ctx == nil {
		return Identity{}, false
	}
	identity, ok := ctx.Value(identityContextKey{}).(Identity)
	if !ok || identity.UserID == "" {
		return Identity{}, false
	}
	return identity, true
}
