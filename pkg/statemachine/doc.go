// Package statemachine provides a small, type-safe finite state machine.
//
// States and events are any string-based types, so callers declare their own
// vocabularies and the compiler keeps them apart:
//
//	type State string
//	type Event string
//
//	const (
//	    Idle    State = "idle"
//	    Running State = "running"
//	    Failed  State = "failed"
//
//	    Start Event = "start"
//	    Crash Event = "crash"
//	)
//
//	m := statemachine.MustNew(Idle,
//	    statemachine.WithTransition[State, Event](Idle, Running, Start),
//	    statemachine.WithInterrupt[State, Event](Crash, Failed, Failed),
//	)
//
//	_ = m.Fire(ctx, Start, nil)
//
// # Guards, Actions and Hooks
//
// Guards veto a transition based on runtime data. Several transitions may be
// registered for the same state/event pair; the first one whose guards pass
// wins, which enables branching. Actions run after guards and before the state
// changes; an action error aborts the transition. Hooks observe completed
// transitions and are the right place for logging.
//
// # Interrupts
//
// An interrupt is an event accepted from every state except an explicit
// exclusion list, e.g. a crash signal that must work regardless of progress.
// Regular transitions for the same event take priority.
//
// # Error Handling
//
//	if errors.Is(err, statemachine.ErrNoTransition) { /* event not valid here */ }
//	if errors.Is(err, statemachine.ErrRejected)     { /* guards said no */ }
//
// # Concurrency
//
// Machine guards its state with a RWMutex. Actions run while the lock is held
// and must not call back into the same machine; hooks run after it is released.
package statemachine
