// Package ratelimiter implements a token bucket limiter with in-memory and
// Redis backed stores plus an HTTP middleware.
//
// A bucket holds up to Capacity tokens and gains RefillRate tokens every
// RefillInterval. Each allowed request takes one token. Denied requests
// still draw the bucket down, so clients that keep hammering stay blocked
// until they back off.
//
//	store := ratelimiter.NewMemoryStore()
//	defer store.Close()
//
//	bucket, err := ratelimiter.NewBucket(store, cfg)
//	if err != nil {
//		return err
//	}
//
//	ips := clientip.New()
//	r.With(ratelimiter.Middleware(bucket, ips.FromRequest, log)).Post("/api/subscribe", h)
//
// Throttled requests receive 429 with a Retry-After header and a JSON body
// of the form {"error": "..."}. When the store is unavailable the request is
// allowed and a warning is logged.
package ratelimiter
