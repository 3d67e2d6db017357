package checkout

import (
	"log/slog"
	"time"
)

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCatalog restricts carts and plans to known ids.
func WithCatalog(cat Catalog) Option {
	return func(c *Controller) {
		c.catalog = cat
	}
}

// WithID sets the attempt id used in logs. A random id is used otherwise.
func WithID(id string) Option {
	return func(c *Controller) {
		if id != "" {
			c.id = id
		}
	}
}

// WithFollowUpTimeout bounds the background follow-up after success (default 10s).
func WithFollowUpTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.followUpTimeout = d
		}
	}
}
