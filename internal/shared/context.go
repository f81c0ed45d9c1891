package shared

import "context"

// Principal describes the authenticated caller resolved by the authorization
// layer. Roles carries canonical (uppercase) role codes.
type Principal struct {
	UserID int64
	Roles  []string
}

// HasRole reports whether the principal holds the given role code.
func (p Principal) HasRole(code string) bool {
	for _, r := range p.Roles {
		if r == code {
			return true
		}
	}
	return false
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalContextKey{}).(Principal)
	return p, ok
}
