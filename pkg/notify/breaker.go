package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// BreakerState is the admission mode of a Breaker.
type BreakerState string

const (
	BreakerClosed BreakerState = "closed"
	BreakerOpen   BreakerState = "open"
	// BreakerTrial admits a single delivery to test whether the backend recovered.
	BreakerTrial BreakerState = "trial"
)

// CircuitOpenError is returned by Send while the breaker refuses deliveries.
// The notification was not attempted.
type CircuitOpenError struct {
	// RetryAfter is how long until a trial delivery is admitted. It is zero
	// when a trial delivery is already in flight.
	RetryAfter time.Duration
}

func (e *CircuitOpenError) Error() string {
	if e.RetryAfter <= 0 {
		return "notification circuit breaker is open: trial delivery in flight"
	}
	return fmt.Sprintf("notification circuit breaker is open: retry in %s", e.RetryAfter.Round(time.Millisecond))
}

func (e *CircuitOpenError) Unwrap() error { return ErrCircuitOpen }

// Breaker stops notifications to a backend that keeps failing. It counts
// failed notifications, not HTTP attempts: a Send that succeeds after
// retries is one success. After threshold consecutive failures it opens for
// cooldown, then admits one trial Send whose result closes or reopens it.
// Share one instance per endpoint.
type Breaker struct {
	threshold int
	cooldown  time.Duration
	now       func() time.Time

	mu       sync.Mutex
	failures int
	openedAt time.Time
	trial    bool
}

// BreakerOption configures a Breaker.
type BreakerOption func(*Breaker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// NewBreaker creates a closed breaker. Non-positive values default to 5
// failures and a 30s cooldown.
func NewBreaker(threshold int, cooldown time.Duration, opts ...BreakerOption) *Breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	b := &Breaker{threshold: threshold, cooldown: cooldown, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// State returns the mode the next Send would meet.
func (b *Breaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Breaker) stateLocked() BreakerState {
	switch {
	case b.openedAt.IsZero():
		return BreakerClosed
	case b.trial || b.now().Sub(b.openedAt) >= b.cooldown:
		return BreakerTrial
	default:
		return BreakerOpen
	}
}

// acquire admits a delivery or returns a *CircuitOpenError.
func (b *Breaker) acquire() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.stateLocked() {
	case BreakerClosed:
		return nil
	case BreakerOpen:
		return &CircuitOpenError{RetryAfter: b.cooldown - b.now().Sub(b.openedAt)}
	}
	if b.trial {
		return &CircuitOpenError{}
	}
	b.trial = true
	return nil
}

// report records the outcome of an admitted Send. A cancelled caller says
// nothing about the backend, so it only frees the trial slot.
func (b *Breaker) report(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	wasTrial := b.trial
	b.trial = false
	switch {
	case err == nil:
		b.failures = 0
		b.openedAt = time.Time{}
	case errors.Is(err, context.Canceled):
	default:
		b.failures++
		if wasTrial || b.failures >= b.threshold {
			b.openedAt = b.now()
		}
	}
}

// Reset closes the breaker and clears its failure count.
func (b *Breaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures = 0
	b.openedAt = time.Time{}
	b.trial = false
}
