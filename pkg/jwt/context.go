package jwt

import "context"

type contextKey struct{ name string }

var (
	tokenKey  = &contextKey{name: "jwt"}
	claimsKey = &contextKey{name: "jwt_claims"}
)

// WithToken stores the raw token in ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey, token)
}

// Token returns the raw token stored by the middleware.
func Token(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok
}

// WithClaims stores verified claims in ctx.
func WithClaims(ctx context.Context, claims TrialClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Claims returns the verified trial claims stored by the middleware.
func Claims(ctx context.Context) (TrialClaims, bool) {
	c, ok := ctx.Value(claimsKey).(TrialClaims)
	return c, ok
}
