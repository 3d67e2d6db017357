package statemachine

import (
	"context"
	"fmt"
	"slices"
	"sync"
)

// Guard evaluates whether a transition should be allowed based on runtime conditions.
type Guard[S, E ~string] func(ctx context.Context, from S, event E, data any) bool

// Action executes side effects during state transitions. Returning an error prevents the transition.
type Action[S, E ~string] func(ctx context.Context, from, to S, event E, data any) error

// Hook observes a completed transition. Hooks run after the state has changed
// and cannot veto it.
type Hook[S, E ~string] func(ctx context.Context, from, to S, event E)

// Transition defines a state change triggered by an event, with optional guards and actions.
type Transition[S, E ~string] struct {
	From    S
	To      S
	Event   E
	Guards  []Guard[S, E]  // All must pass for transition to proceed
	Actions []Action[S, E] // Executed in order before state change
}

// interrupt is a transition allowed from every state except the listed ones.
type interrupt[S ~string] struct {
	to     S
	except []S
}

// Machine is a thread-safe in-memory finite state machine over typed states and events.
// Lookups use a nested map: [from][event][]Transition.
type Machine[S, E ~string] struct {
	mu          sync.RWMutex
	initial     S
	current     S
	transitions map[S]map[E][]Transition[S, E]
	interrupts  map[E]interrupt[S]
	hooks       []Hook[S, E]
}

func newMachine[S, E ~string](initial S) *Machine[S, E] {
	return &Machine[S, E]{
		initial:     initial,
		current:     initial,
		transitions: make(map[S]map[E][]Transition[S, E]),
		interrupts:  make(map[E]interrupt[S]),
	}
}

// Current returns the current state.
func (m *Machine[S, E]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is reports whether the current state is one of the given states.
func (m *Machine[S, E]) Is(states ...S) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Contains(states, m.current)
}

// AddTransition registers a transition. Several transitions may share the same
// from/event pair; the first one whose guards pass wins.
func (m *Machine[S, E]) AddTransition(t Transition[S, E]) error {
	if t.From == "" || t.To == "" || t.Event == "" {
		return ErrInvalidTransition
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transitions[t.From]; !ok {
		m.transitions[t.From] = make(map[E][]Transition[S, E])
	}
	m.transitions[t.From][t.Event] = append(m.transitions[t.From][t.Event], t)
	return nil
}

// Fire triggers the event. Regular transitions take priority over interrupts.
func (m *Machine[S, E]) Fire(ctx context.Context, event E, data any) error {
	if event == "" {
		return ErrInvalidEvent
	}

	m.mu.Lock()
	from := m.current
	t, err := m.resolve(ctx, from, event, data)
	if err != nil {
		m.mu.Unlock()
		return err
	}

	for _, action := range t.Actions {
		if action == nil {
			continue
		}
		if err := action(ctx, from, t.To, event, data); err != nil {
			m.mu.Unlock()
			return fmt.Errorf("action failed: %w", err)
		}
	}

	m.current = t.To
	hooks := m.hooks
	m.mu.Unlock()

	for _, h := range hooks {
		h(ctx, from, t.To, event)
	}
	return nil
}

// CanFire reports whether Fire would succeed for the event in the current state.
func (m *Machine[S, E]) CanFire(ctx context.Context, event E, data any) bool {
	if event == "" {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := m.resolve(ctx, m.current, event, data)
	return err == nil
}

// Reset moves the machine back to its initial state without running actions or hooks.
func (m *Machine[S, E]) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = m.initial
}

// resolve picks the transition for event from state. Caller must hold the lock.
func (m *Machine[S, E]) resolve(ctx context.Context, from S, event E, data any) (Transition[S, E], error) {
	candidates := m.transitions[from][event]
	for _, t := range candidates {
		if passes(ctx, t.Guards, from, event, data) {
			return t, nil
		}
	}

	if in, ok := m.interrupts[event]; ok && !slices.Contains(in.except, from) {
		return Transition[S, E]{From: from, To: in.to, Event: event}, nil
	}

	if len(candidates) > 0 {
		return Transition[S, E]{}, NewTransitionError(string(from), string(event), true)
	}
	return Transition[S, E]{}, NewTransitionError(string(from), string(event), false)
}

func passes[S, E ~string](ctx context.Context, guards []Guard[S, E], from S, event E, data any) bool {
	for _, guard := range guards {
		if guard != nil && !guard(ctx, from, event, data) {
			return false
		}
	}
	return true
}
