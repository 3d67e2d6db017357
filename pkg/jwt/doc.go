// Package jwt issues and verifies HS256 trial access tokens.
//
// A trial token carries the visitor's email and an exp claim set by the
// service TTL (7 days by default):
//
//	svc, err := jwt.New(cfg.Secret)
//	token, claims, err := svc.IssueTrial("visitor@example.com")
//
// Middleware protects handlers with a Bearer token and answers 401 with a
// JSON message distinguishing a missing, expired or invalid token. Handlers
// read the verified claims with Claims(ctx).
//
// DecodeUnverified reads claims without the signing key. Token holders use
// it to check exp locally before sending a token that would be rejected.
package jwt
