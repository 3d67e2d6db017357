package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// Error taxonomy. Declined is a State, never an error.
var (
	// ErrInvalidInput is returned by local validation; no network call was made.
	ErrInvalidInput = errors.New("checkout: invalid input")

	// ErrInvalidApprovalPayload is returned when the provider's approval lacks
	// the intent or payer id, or names a different intent.
	ErrInvalidApprovalPayload = errors.New("checkout: invalid approval payload")

	// ErrNetwork is returned when a backend or provider call could not complete.
	ErrNetwork = errors.New("checkout: network error")

	// ErrServerRejected is matched by every *RejectionError.
	ErrServerRejected = errors.New("checkout: rejected by server")

	// ErrMalformedResponse is matched by every *MalformedError.
	ErrMalformedResponse = errors.New("checkout: malformed response")

	// ErrProviderError is returned when the checkout widget reports a failure.
	ErrProviderError = errors.New("checkout: provider error")

	// ErrOutOfOrder is returned when the provider invokes a hook the current
	// state does not accept. The state is left unchanged.
	ErrOutOfOrder = fmt.Errorf("%w: call out of order", ErrProviderError)

	// ErrInterrupted is returned when a provider error moved the attempt to
	// Failed while a create or capture call was in flight.
	ErrInterrupted = fmt.Errorf("%w: attempt interrupted", ErrProviderError)
)

// RejectionError is a structured business error from the backend or provider.
type RejectionError struct {
	Issue       string
	Description string
	DebugID     string
	// Message is the human-readable cause shown to the payer.
	Message string
}

func (e *RejectionError) Error() string {
	return "checkout: rejected by server: " + e.Message
}

func (e *RejectionError) Unwrap() error {
	return ErrServerRejected
}

// MalformedError is a success status whose body lacks the expected fields.
type MalformedError struct {
	Reason string
	// Body is the sanitized response body, if any.
	Body string
}

func (e *MalformedError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("checkout: malformed response: %s: %s", e.Reason, e.Body)
	}
	return "checkout: malformed response: " + e.Reason
}

func (e *MalformedError) Unwrap() error {
	return ErrMalformedResponse
}

// Cause returns the human-readable reason for err, suitable for an outcome message.
func Cause(err error) string {
	if err == nil {
		return ""
	}

	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej.Message
	}
	var mal *MalformedError
	if errors.As(err, &mal) {
		if mal.Body != "" {
			return mal.Body
		}
		return mal.Reason
	}

	switch {
	case errors.Is(err, ErrNetwork):
		return "The payment server could not be reached. Please check your connection and try again."
	case errors.Is(err, ErrProviderError):
		return MsgProviderError
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidApprovalPayload):
		return strings.TrimPrefix(err.Error(), "checkout: ")
	default:
		return err.Error()
	}
}
