package transport

import "errors"

var (
	// ErrNetwork is returned when a request could not complete: dial failure,
	// connection reset, timeout, or an unreadable response body.
	ErrNetwork = errors.New("network request failed")

	// ErrTimeout is returned together with ErrNetwork when the per-call deadline expires.
	ErrTimeout = errors.New("request timed out")

	// ErrInvalidRequest is returned when the request cannot be built or its body cannot be encoded.
	ErrInvalidRequest = errors.New("invalid request")

	// ErrDecode is returned when a response body is not the expected JSON.
	ErrDecode = errors.New("failed to decode response body")
)

// IsNetwork reports whether err means the call never produced a response.
func IsNetwork(err error) bool {
	return errors.Is(err, ErrNetwork)
}
