package ratelimiter

import "errors"

var (
	ErrInvalidConfig      = errors.New("invalid rate limit configuration")
	ErrInvalidTokenCount  = errors.New("invalid token count")
	ErrStoreUnavailable   = errors.New("rate limit store unavailable")
	ErrRedisClientMissing = errors.New("redis client is required")
)
