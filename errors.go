package fsmkit

import (
	"errors"
	"fmt"
)

// Configuration errors, detected at validation or interpreter construction.
var (
	// ErrNoStates indicates an empty states map.
	ErrNoStates = errors.New("definition has no states")
	// ErrUnknownInitialState indicates the initial state is not defined.
	ErrUnknownInitialState = errors.New("initial state not found in states")
)

// DanglingTargetError reports a transition whose target is not a defined
// state.
type DanglingTargetError struct {
	State  StateID
	Event  EventType
	Target StateID
}

func (e *DanglingTargetError) Error() string {
	return fmt.Sprintf("state %q: transition on %q targets unknown state %q", e.State, e.Event, e.Target)
}

// DuplicateStateError reports a state declared more than once in a serialized
// definition. The in-memory map representation cannot express duplicates; this
// surfaces from the loader when states are given as a sequence.
type DuplicateStateError struct {
	ID StateID
}

func (e *DuplicateStateError) Error() string {
	return fmt.Sprintf("duplicate state %q", e.ID)
}

// MissingActionError reports an ActionRef with no implementation in the
// supplied ActionMap.
type MissingActionError struct {
	Ref ActionRef
}

func (e *MissingActionError) Error() string {
	return fmt.Sprintf("no implementation for action %q", e.Ref)
}

// MissingGuardError reports a GuardRef with no implementation in the supplied
// GuardMap.
type MissingGuardError struct {
	Ref GuardRef
}

func (e *MissingGuardError) Error() string {
	return fmt.Sprintf("no implementation for guard %q", e.Ref)
}

// SendError wraps an action or guard failure with machine and state context.
// Op identifies the failing implementation, e.g. "action setPosition" or
// "guard hasSupport".
type SendError struct {
	Machine string
	State   StateID
	Op      string
	Err     error
}

func (e *SendError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("machine %s: state %s: %s: %v", e.Machine, e.State, e.Op, e.Err)
	}
	return fmt.Sprintf("machine %s: state %s: %v", e.Machine, e.State, e.Err)
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// wrapSendError attaches machine/state context to err, or returns nil.
func wrapSendError(machine string, state StateID, op string, err error) error {
	if err == nil {
		return nil
	}
	return &SendError{Machine: machine, State: state, Op: op, Err: err}
}
