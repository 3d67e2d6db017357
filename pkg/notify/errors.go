package notify

import "errors"

// Sentinel errors for notification delivery. Wrapped errors carry the
// status code or transport cause for logging.
var (
	ErrDeliveryFailed   = errors.New("notification delivery failed")
	ErrPermanentFailure = errors.New("permanent notification failure")
	ErrTemporaryFailure = errors.New("temporary notification failure")
	ErrCircuitOpen      = errors.New("notification circuit breaker is open")
	ErrInvalidPayload   = errors.New("invalid notification payload")
	ErrTimeout          = errors.New("notification request timeout")
)

// IsCircuitOpen reports whether the notification was refused by an open
// breaker rather than attempted and failed.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, ErrCircuitOpen)
}
