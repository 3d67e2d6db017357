// Package clientip resolves the originating client address of a request
// that reached the service through one or more reverse proxies.
//
// Headers are consulted in order and the first parseable address wins.
// The default order is:
//
//  1. CF-Connecting-IP
//  2. X-Forwarded-For (first valid entry)
//  3. X-Real-IP
//  4. RemoteAddr
//
// Deployments that are reachable directly should pass WithHeaders() with no
// arguments so that only the TCP peer address is trusted.
//
//	ip := clientip.New().FromRequest(r)
//
//	r.Use(clientip.New().Middleware)
//	ip := clientip.FromContext(r.Context())
package clientip
