package lifecycle

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an operation step is called out of
// order.
var ErrInvalidTransition = errors.New("invalid lifecycle transition")

// State is the phase an operation is in.
type State int

// Lifecycle states.
const (
	StateIdle State = iota
	StateClassifying
	StatePreNotified
	StateAwaitingHostIO
	StatePostNotified
	StateDone
	StateFailed
)

var stateNames = [...]string{
	StateIdle:           "idle",
	StateClassifying:    "classifying",
	StatePreNotified:    "pre-notified",
	StateAwaitingHostIO: "awaiting-host-io",
	StatePostNotified:   "post-notified",
	StateDone:           "done",
	StateFailed:         "failed",
}

// String returns the state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == StateDone || s == StateFailed
}

// transitions lists the forward edges. Failed is reachable from every
// non-terminal state and is handled separately.
var transitions = map[State]State{
	StateIdle:           StateClassifying,
	StateClassifying:    StatePreNotified,
	StatePreNotified:    StateAwaitingHostIO,
	StateAwaitingHostIO: StatePostNotified,
	StatePostNotified:   StateDone,
}

// CanTransition reports whether from -> to is allowed.
func CanTransition(from, to State) bool {
	if to == StateFailed {
		return !from.IsTerminal()
	}
	next, ok := transitions[from]
	return ok && next == to
}

func checkTransition(from, to State) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
	}
	return nil
}
