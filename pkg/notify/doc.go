// Package notify delivers best-effort JSON notifications to the application
// backend, such as the subscription-success callback sent after a payer
// approves a subscription.
//
// Each Send marshals the payload once, then makes up to 1+MaxRetries attempts
// through a transport.Client. Every attempt carries the same Idempotency-Key
// header. Delays between attempts come from a BackoffStrategy. A shared
// Breaker refuses notifications to a backend that keeps failing; those Sends
// return a *CircuitOpenError without touching the network.
//
//	n := notify.New(client, notify.WithMaxRetries(2), notify.WithLogger(log))
//	err := n.Send(ctx, "/api/paypal/subscription-success", notice)
//	if err != nil {
//	    // degrade: the payment already succeeded
//	}
//
// Client errors (4xx other than 408, 425, 429) fail fast with
// ErrPermanentFailure. Exhausted retries return ErrDeliveryFailed.
package notify
