// Package auth resolves the calling principal and guards the PIN
// subsystem.
//
// The identity provider lives outside this service: callers present
// either the opaque principal ID it issued (X-User-ID header) or a
// bearer token it signed. Either way the core only ever sees an opaque
// principal string.
package auth

import (
	"context"
	"errors"
)

var (
	ErrMissingPrincipal = errors.New("authorization required")
	ErrInvalidToken     = errors.New("invalid or expired token")
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

const principalKey contextKey = "principal"

// WithPrincipal returns a context carrying the authenticated principal.
func WithPrincipal(ctx context.Context, principal string) context.Context {
	return context.WithValue(ctx, principalKey, principal)
}

// PrincipalFromContext extracts the principal from the context.
// Returns empty string if not found.
func PrincipalFromContext(ctx context.Context) string {
	principal, _ := ctx.Value(principalKey).(string)
	return principal
}
