package trial

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidEmail       = errors.New("trial: email is required")
	ErrNetwork            = errors.New("trial: trial server could not be reached")
	ErrServerRejected     = errors.New("trial: trial server rejected the request")
	ErrMalformedResponse  = errors.New("trial: trial server returned no token")
	ErrStore              = errors.New("trial: session store failure")
	ErrMissingVisitor     = errors.New("trial: visitor id is required")
	ErrRedisClientMissing = errors.New("trial: redis client is nil")
)

// ServerRejectedError carries the message the trial server answered with.
type ServerRejectedError struct {
	StatusCode int
	Message    string
}

func (e *ServerRejectedError) Error() string {
	return fmt.Sprintf("trial: server rejected request (status %d): %s", e.StatusCode, e.Message)
}

func (e *ServerRejectedError) Unwrap() error { return ErrServerRejected }
