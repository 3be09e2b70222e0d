package fsm

import (
	"errors"
	"fmt"
)

var (
	// ErrTransitionNotAllowed means no rule exists for the (state, event)
	// pair. Hitting it from a terminal state is a programming error in
	// the caller, not a business condition.
	ErrTransitionNotAllowed = errors.New("transition not allowed")

	// ErrTechnical covers invalid input and handler failures.
	ErrTechnical = errors.New("state machine technical error")
)

// Handler runs the side effects of one transition. Handlers typically
// mutate the context value in place; the machine itself holds no
// business state beyond its transition table.
type Handler[S ~string, E ~string, C any] func(from, to S, event E, c C) error

// Transition describes a single edge in the machine.
type Transition[S ~string, E ~string, C any] struct {
	From     S
	To       S
	Event    E
	Handlers []Handler[S, E, C]
}

// Machine is a table-driven transition executor, reusable across entity
// types. Register the full table once at startup; Trigger is read-only
// afterwards and safe for concurrent use.
type Machine[S ~string, E ~string, C any] struct {
	transitions map[string]Transition[S, E, C]
}

func New[S ~string, E ~string, C any]() *Machine[S, E, C] {
	return &Machine[S, E, C]{
		transitions: make(map[string]Transition[S, E, C]),
	}
}

// Register loads transition rules into the lookup table. Registering a
// rule for a (From, Event) pair that already exists overwrites it.
func (m *Machine[S, E, C]) Register(transitions []Transition[S, E, C]) {
	for _, t := range transitions {
		m.transitions[transitionKey(t.From, t.Event)] = t
	}
}

// Trigger resolves the rule for (from, event), runs its handlers in
// registration order and returns the target state. A handler error
// aborts the remaining handlers.
func (m *Machine[S, E, C]) Trigger(from S, event E, c C) (S, error) {
	if from == *new(S) {
		return from, fmt.Errorf("%w: empty fromState", ErrTechnical)
	}
	if event == *new(E) {
		return from, fmt.Errorf("%w: empty event", ErrTechnical)
	}

	t, ok := m.transitions[transitionKey(from, event)]
	if !ok {
		return from, fmt.Errorf("%w: no transition for state '%s' and event '%s'", ErrTransitionNotAllowed, from, event)
	}

	for _, handler := range t.Handlers {
		if err := handler(from, t.To, event, c); err != nil {
			return from, fmt.Errorf("%w: handler for event '%s' from state '%s': %v", ErrTechnical, event, from, err)
		}
	}

	return t.To, nil
}

func transitionKey[S ~string, E ~string](from S, event E) string {
	return string(from) + ":" + string(event)
}
