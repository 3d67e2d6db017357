package ratelimiter

import "time"

// Result is the outcome of a single bucket check.
type Result struct {
	Limit     int       // bucket capacity
	Remaining int       // tokens left after the check, negative when denied
	ResetAt   time.Time // next refill
}

// Allowed reports whether the checked request may proceed.
func (r *Result) Allowed() bool {
	return r.Remaining >= 0
}

// RetryAfter returns how long to wait before retrying. Zero when allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed() {
		return 0
	}
	return max(time.Until(r.ResetAt), 0)
}

// Config defines the token bucket.
type Config struct {
	Capacity       int           `env:"RATE_LIMIT_CAPACITY" envDefault:"5"`
	RefillRate     int           `env:"RATE_LIMIT_REFILL_RATE" envDefault:"1"`
	RefillInterval time.Duration `env:"RATE_LIMIT_REFILL_INTERVAL" envDefault:"1m"`
	RedisPrefix    string        `env:"RATE_LIMIT_REDIS_PREFIX" envDefault:"ratelimit:"`
}
