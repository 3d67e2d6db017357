package trial

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/transport"
)

// Access is the result of EnsureAccess: either a granted session or a
// request for the visitor's email.
type Access struct {
	Session    Session
	NeedsEmail bool
}

// Granted reports whether a token is available.
func (a Access) Granted() bool { return !a.NeedsEmail && !a.Session.Empty() }

// Token returns the granted token, or "".
func (a Access) Token() string { return a.Session.Token }

type redeemRequest struct {
	Email string `json:"email"`
}

type redeemResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// Gate turns a visitor's email into a trial token before a protected
// action runs.
type Gate struct {
	client *transport.Client
	store  Store
	policy Policy
	path   string
	logger *slog.Logger
}

// NewGate creates a gate redeeming trials through client.
func NewGate(client *transport.Client, opts ...Option) *Gate {
	g := &Gate{
		client: client,
		store:  NewMemoryStore(),
		policy: ExpiryPolicy{},
		path:   "/api/subscribe",
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		opt(g)
	}
	g.logger = g.logger.With(logger.Component("trial_gate"))
	return g
}

// EnsureAccess returns the visitor's stored session without any network
// call. With no session, or a session the policy rejects, it asks for an email.
func (g *Gate) EnsureAccess(ctx context.Context, visitor string) (Access, error) {
	if visitor == "" {
		return Access{}, ErrMissingVisitor
	}

	s, ok, err := g.store.Load(ctx, visitor)
	if err != nil {
		return Access{}, err
	}
	if !ok || s.Empty() {
		return Access{NeedsEmail: true}, nil
	}

	if !g.policy.Fresh(ctx, s) {
		g.logger.InfoContext(ctx, "stored trial token is stale", logger.VisitorID(visitor))
		if err := g.store.Delete(ctx, visitor); err != nil {
			g.logger.WarnContext(ctx, "failed to drop stale trial session", logger.VisitorID(visitor), logger.Error(err))
		}
		return Access{NeedsEmail: true, Session: Session{Email: s.Email}}, nil
	}

	return Access{Session: s}, nil
}

// RedeemTrial exchanges email for a trial token and stores the session.
func (g *Gate) RedeemTrial(ctx context.Context, visitor, email string) (Session, error) {
	if visitor == "" {
		return Session{}, ErrMissingVisitor
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return Session{}, ErrInvalidEmail
	}

	resp, err := g.client.PostJSON(ctx, g.path, redeemRequest{Email: email})
	if err != nil {
		if transport.IsNetwork(err) {
			return Session{}, errors.Join(ErrNetwork, err)
		}
		return Session{}, err
	}

	var body redeemResponse
	decodeErr := resp.Decode(&body)

	if !resp.OK() {
		msg := body.Message
		if msg == "" {
			msg = body.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		g.logger.WarnContext(ctx, "trial redemption rejected",
			logger.VisitorID(visitor),
			logger.StatusCode(resp.StatusCode),
		)
		return Session{}, &ServerRejectedError{StatusCode: resp.StatusCode, Message: msg}
	}

	if decodeErr != nil || body.Token == "" {
		return Session{}, errors.Join(ErrMalformedResponse, decodeErr)
	}

	s := Session{Token: body.Token, Email: email}
	if err := g.store.Save(ctx, visitor, s); err != nil {
		// The token is still usable for this request.
		g.logger.WarnContext(ctx, "failed to persist trial session", logger.VisitorID(visitor), logger.Error(err))
	}
	g.logger.InfoContext(ctx, "trial redeemed", logger.VisitorID(visitor))
	return s, nil
}

// Forget drops the visitor's session.
func (g *Gate) Forget(ctx context.Context, visitor string) error {
	return g.store.Delete(ctx, visitor)
}
