package counter

import (
	"fmt"

	"github.com/Guyuepp/like-engine/domain"
	"github.com/Guyuepp/like-engine/internal/fsm"
)

// StatusEvent drives a ledger entry through its lifecycle.
type StatusEvent string

const (
	SetRetrying StatusEvent = "SET_RETRYING"
	SetSuccess  StatusEvent = "SET_SUCCESS"
	SetFailed   StatusEvent = "SET_FAILED"
)

type statusMachine = fsm.Machine[domain.EventStatus, StatusEvent, *domain.CountEvent]

// setStatusHandler is the shared side effect of every transition: write
// the target status onto the entry, and count the retry when moving
// into RETRYING.
func setStatusHandler(from, to domain.EventStatus, event StatusEvent, entry *domain.CountEvent) error {
	if entry == nil {
		return fmt.Errorf("handler for event '%s' from '%s' to '%s' was called without an entry", event, from, to)
	}
	entry.Status = to
	if to == domain.EventRetrying {
		entry.RetryCount++
	}
	return nil
}

// newStatusMachine builds the ledger state machine. SUCCESS and FAILED
// are terminal: no rule leads out of them, so any trigger from there
// fails with fsm.ErrTransitionNotAllowed.
func newStatusMachine() *statusMachine {
	handlers := []fsm.Handler[domain.EventStatus, StatusEvent, *domain.CountEvent]{setStatusHandler}

	m := fsm.New[domain.EventStatus, StatusEvent, *domain.CountEvent]()
	m.Register([]fsm.Transition[domain.EventStatus, StatusEvent, *domain.CountEvent]{
		{From: domain.EventPending, To: domain.EventRetrying, Event: SetRetrying, Handlers: handlers},
		{From: domain.EventPending, To: domain.EventSuccess, Event: SetSuccess, Handlers: handlers},
		{From: domain.EventPending, To: domain.EventFailed, Event: SetFailed, Handlers: handlers},
		{From: domain.EventRetrying, To: domain.EventRetrying, Event: SetRetrying, Handlers: handlers},
		{From: domain.EventRetrying, To: domain.EventSuccess, Event: SetSuccess, Handlers: handlers},
		{From: domain.EventRetrying, To: domain.EventFailed, Event: SetFailed, Handlers: handlers},
	})
	return m
}
