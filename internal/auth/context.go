package auth

import (
	"context"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const identityContextKey contextKey = "identity"

// Identity is the verified subject of an access token.
type Identity struct {
	AccountID int64
	TokenID   string
}

// ContextWithIdentity binds a verified identity to the request context.
func ContextWithIdentity(ctx context.Context, identity Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// IdentityFromContext retrieves the identity bound by the auth middleware.
func IdentityFromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(Identity)
	return identity, ok
}

// AccountIDFromContext returns the authenticated account id, or 0 if the
// request is unauthenticated.
func AccountIDFromContext(ctx context.Context) int64 {
	identity, ok := IdentityFromContext(ctx)
	if !ok {
		return 0
	}
	return identity.AccountID
}
