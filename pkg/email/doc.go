// Package email sends transactional email through Postmark.
//
// NewFromConfig returns a PostmarkSender when tokens are configured and a
// LogSender otherwise, so local runs need no provider account:
//
//	sender, err := email.NewFromConfig(cfg, log)
//	msg, err := email.TrialWelcome("visitor@example.com", claims.Expiry())
//	err = sender.Send(ctx, msg)
//
// Every Sender validates the message first and returns ErrInvalidMessage
// for a bad recipient or an empty subject or body.
package email
