package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("statemachine: transition needs from, to and event")
	ErrInvalidEvent      = errors.New("statemachine: empty event")

	// ErrNoTransition means the event is not defined for the current state.
	ErrNoTransition = errors.New("statemachine: no transition")
	// ErrRejected means every candidate transition was vetoed by its guard.
	ErrRejected = errors.New("statemachine: transition rejected by guards")
)

// TransitionError reports which state and event a Fire call failed on.
// It matches ErrNoTransition or ErrRejected with errors.Is.
type TransitionError struct {
	From     string
	Event    string
	Rejected bool
}

// NewTransitionError builds a TransitionError for from and event.
func NewTransitionError(from, event string, rejected bool) *TransitionError {
	return &TransitionError{From: from, Event: event, Rejected: rejected}
}

func (e *TransitionError) Error() string {
	if e.Rejected {
		return fmt.Sprintf("statemachine: %q from %q rejected by guards", e.Event, e.From)
	}
	return fmt.Sprintf("statemachine: no %q transition from %q", e.Event, e.From)
}

func (e *TransitionError) Unwrap() error {
	if e.Rejected {
		return ErrRejected
	}
	return ErrNoTransition
}
