// Package fsmkit is a small evaluation engine for declaratively defined
// finite state machines: states, guarded transitions, entry/exit/transition
// actions and an extended context, interpreted synchronously one event at a
// time.
//
// A Definition is pure data. Action and guard implementations are supplied
// separately at interpreter construction, so the same Definition can be
// validated, serialized and visualized without running any logic.
package fsmkit

// StateID names a state node. Unique within a Definition.
type StateID string

// EventType discriminates events.
type EventType string

// ActionRef names an action implementation, resolved against an ActionMap
// when an Interpreter is constructed.
type ActionRef string

// GuardRef names a guard implementation, resolved against a GuardMap when an
// Interpreter is constructed.
type GuardRef string

// Transition is a single candidate for an event. Candidates for the same
// event are evaluated in definition order; the first whose guard passes wins.
type Transition struct {
	Target  StateID     `json:"target" yaml:"target"`
	Guard   GuardRef    `json:"guard,omitempty" yaml:"guard,omitempty"`
	Actions []ActionRef `json:"actions,omitempty" yaml:"actions,omitempty"`
}

// StateNode is one state of the machine. A node with an empty On map is
// terminal: every event is a no-op while the machine sits in it.
type StateNode struct {
	Entry []ActionRef                `json:"entry,omitempty" yaml:"entry,omitempty"`
	Exit  []ActionRef                `json:"exit,omitempty" yaml:"exit,omitempty"`
	On    map[EventType][]Transition `json:"on,omitempty" yaml:"on,omitempty"`
}

// Definition is the immutable declarative description of a machine.
// It is never mutated by the engine and may be shared by any number of
// Interpreter instances.
type Definition struct {
	ID             string                `json:"id" yaml:"id"`
	Initial        StateID               `json:"initial" yaml:"initial"`
	InitialContext map[string]any        `json:"context,omitempty" yaml:"context,omitempty"`
	States         map[StateID]*StateNode `json:"states" yaml:"states"`
}

// Validate checks the structural invariants of the definition: the initial
// state exists, and every transition target names a defined state. Action and
// guard references are deliberately not checked here; they are resolved when
// an Interpreter is constructed.
func (d *Definition) Validate() error {
	if len(d.States) == 0 {
		return ErrNoStates
	}
	if _, ok := d.States[d.Initial]; !ok {
		return ErrUnknownInitialState
	}
	for id, node := range d.States {
		if node == nil {
			return &DanglingTargetError{State: id, Target: id}
		}
		for event, candidates := range node.On {
			for _, t := range candidates {
				if _, ok := d.States[t.Target]; !ok {
					return &DanglingTargetError{State: id, Event: event, Target: t.Target}
				}
			}
		}
	}
	return nil
}

// Node returns the node for id, or nil if undefined.
func (d *Definition) Node(id StateID) *StateNode {
	return d.States[id]
}

// Events returns the event types the given state reacts to, in no particular
// order. Returns nil for terminal or undefined states.
func (d *Definition) Events(id StateID) []EventType {
	node := d.States[id]
	if node == nil || len(node.On) == 0 {
		return nil
	}
	events := make([]EventType, 0, len(node.On))
	for e := range node.On {
		events = append(events, e)
	}
	return events
}

// actionRefs walks every action reference in the definition. Used for eager
// resolution at interpreter construction.
func (d *Definition) actionRefs(visit func(ref ActionRef)) {
	for _, node := range d.States {
		for _, ref := range node.Entry {
			visit(ref)
		}
		for _, ref := range node.Exit {
			visit(ref)
		}
		for _, candidates := range node.On {
			for _, t := range candidates {
				for _, ref := range t.Actions {
					visit(ref)
				}
			}
		}
	}
}

// guardRefs walks every non-empty guard reference in the definition.
func (d *Definition) guardRefs(visit func(ref GuardRef)) {
	for _, node := range d.States {
		for _, candidates := range node.On {
			for _, t := range candidates {
				if t.Guard != "" {
					visit(t.Guard)
				}
			}
		}
	}
}
