package trial

import (
	"context"
	"time"

	"github.com/dmitrymomot/checkoutkit/pkg/jwt"
)

// Policy decides whether a stored session may still be used. A stale
// session is discarded and the visitor is asked for an email again.
type Policy interface {
	Fresh(ctx context.Context, s Session) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc func(ctx context.Context, s Session) bool

func (f PolicyFunc) Fresh(ctx context.Context, s Session) bool { return f(ctx, s) }

// AlwaysFresh trusts every stored token.
var AlwaysFresh Policy = PolicyFunc(func(context.Context, Session) bool { return true })

// ExpiryPolicy reads the token's exp claim locally, without the signing key
// and without a network call. Tokens that cannot be decoded or carry no exp
// are treated as fresh; the server remains the authority on validity.
type ExpiryPolicy struct {
	// Leeway treats tokens expiring within it as already expired.
	Leeway time.Duration
	Now    func() time.Time
}

func (p ExpiryPolicy) Fresh(_ context.Context, s Session) bool {
	var claims jwt.TrialClaims
	if err := jwt.DecodeUnverified(s.Token, &claims); err != nil || claims.ExpiresAt == 0 {
		return true
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return now().Add(p.Leeway).Before(claims.Expiry())
}
