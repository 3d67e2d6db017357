package trial

import "log/slog"

// Option configures a Gate.
type Option func(*Gate)

// WithStore sets the session store (default: MemoryStore).
func WithStore(s Store) Option {
	return func(g *Gate) {
		if s != nil {
			g.store = s
		}
	}
}

// WithPolicy sets the freshness policy (default: ExpiryPolicy).
func WithPolicy(p Policy) Option {
	return func(g *Gate) {
		if p != nil {
			g.policy = p
		}
	}
}

// WithSubscribePath overrides the redeem endpoint (default /api/subscribe).
func WithSubscribePath(path string) Option {
	return func(g *Gate) {
		if path != "" {
			g.path = path
		}
	}
}

// WithLogger sets the gate logger.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gate) {
		if l != nil {
			g.logger = l
		}
	}
}
