// Package trial gates protected actions behind a free-trial token.
//
// EnsureAccess answers from the session store alone: a stored, fresh token
// is granted at once, otherwise the caller must collect an email and call
// RedeemTrial, which posts {"email"} to the trial server and stores the
// returned token.
//
//	access, err := gate.EnsureAccess(ctx, visitorID)
//	if access.NeedsEmail {
//		session, err := gate.RedeemTrial(ctx, visitorID, email)
//	}
//
// Sessions are keyed by visitor id. MemoryStore keeps them in-process;
// RedisStore keeps them in redis so a trial survives restarts. The default
// ExpiryPolicy drops tokens whose exp claim has passed.
package trial
