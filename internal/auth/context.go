// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithAuth/FromContext for propagating the verified tester via context

package auth

import (
	"context"
)

// authContextKey is the key type for storing Identity in context.Context.
type authContextKey struct{}

// WithAuth returns a new context with the Identity attached.
func WithAuth(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, authContextKey{}, ident)
}

// FromContext retrieves the Identity from the context, returning nil if not present.
func FromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(authContextKey{}).(*Identity)
	return ident
}
