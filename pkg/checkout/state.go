package checkout

import (
	"context"
	"log/slog"

	"github.com/dmitrymomot/checkoutkit/pkg/logger"
	"github.com/dmitrymomot/checkoutkit/pkg/statemachine"
)

// State is a lifecycle state of one checkout attempt.
type State string

const (
	StateIdle             State = "idle"
	StateCreating         State = "creating"
	StateAwaitingApproval State = "awaiting_approval"
	StateCapturing        State = "capturing"
	StateSucceeded        State = "succeeded"
	// StateDeclined is recoverable through Restart.
	StateDeclined State = "declined"
	StateFailed   State = "failed"
)

// Terminal reports whether no further transition is possible for the attempt.
func (s State) Terminal() bool {
	return s == StateSucceeded || s == StateFailed
}

// Event drives the lifecycle machine.
type Event string

const (
	EventCreate        Event = "create"
	EventCreated       Event = "created"
	EventApprove       Event = "approve"
	EventApproved      Event = "approved"
	EventCaptured      Event = "captured"
	EventDeclined      Event = "declined"
	EventFail          Event = "fail"
	EventRestart       Event = "restart"
	EventProviderError Event = "provider_error"
)

type machine = statemachine.Machine[State, Event]

// newMachine builds the lifecycle transition table. Orders pass through
// Capturing; subscriptions go from AwaitingApproval straight to Succeeded.
func newMachine(log *slog.Logger) *machine {
	return statemachine.MustNew(StateIdle,
		statemachine.WithTransitions(
			statemachine.Transition[State, Event]{From: StateIdle, To: StateCreating, Event: EventCreate},
			statemachine.Transition[State, Event]{From: StateCreating, To: StateAwaitingApproval, Event: EventCreated},
			statemachine.Transition[State, Event]{From: StateCreating, To: StateFailed, Event: EventFail},
			statemachine.Transition[State, Event]{From: StateAwaitingApproval, To: StateCapturing, Event: EventApprove},
			statemachine.Transition[State, Event]{From: StateAwaitingApproval, To: StateSucceeded, Event: EventApproved},
			statemachine.Transition[State, Event]{From: StateAwaitingApproval, To: StateFailed, Event: EventFail},
			statemachine.Transition[State, Event]{From: StateCapturing, To: StateSucceeded, Event: EventCaptured},
			statemachine.Transition[State, Event]{From: StateCapturing, To: StateDeclined, Event: EventDeclined},
			statemachine.Transition[State, Event]{From: StateCapturing, To: StateFailed, Event: EventFail},
			statemachine.Transition[State, Event]{From: StateDeclined, To: StateIdle, Event: EventRestart},
		),
		statemachine.WithInterrupt[State, Event](EventProviderError, StateFailed, StateSucceeded, StateFailed),
		statemachine.WithHook[State, Event](func(ctx context.Context, from, to State, event Event) {
			log.DebugContext(ctx, "checkout transition", logger.Transition(string(from), string(to), string(event)))
		}),
	)
}
