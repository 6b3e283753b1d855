package context

import (
	"context"

	"github.com/rglek0/Metadata-Editor/internal/domain"
)

const contextKeyPrincipal = contextKey("principal")

// PrincipalFromContext extracts the authenticated principal from the context.
// Returns the principal and true if present, or a zero principal and false if not.
func PrincipalFromContext(ctx context.Context) (domain.Principal, bool) {
	principal, ok := ctx.Value(contextKeyPrincipal).(domain.Principal)

	return principal, ok
}

// WithPrincipal creates a new context carrying the authenticated principal.
// This context identifies the user for the remainder of the request.
func WithPrincipal(ctx context.Context, principal domain.Principal) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal, principal)
}
