package fsmkit

// Builder provides a fluent API for constructing a Definition in code,
// as an alternative to loading one from YAML or JSON.
type Builder struct {
	def Definition
}

// StateBuilder configures one state of the machine under construction.
type StateBuilder struct {
	b    *Builder
	id   StateID
	node *StateNode
}

// NewBuilder creates a builder for a machine with the given id and initial
// state. The initial state is created immediately; further states are added
// with State.
func NewBuilder(id string, initial StateID) *Builder {
	b := &Builder{
		def: Definition{
			ID:      id,
			Initial: initial,
			States:  make(map[StateID]*StateNode),
		},
	}
	b.State(initial)
	return b
}

// Context seeds a key of the initial context.
func (b *Builder) Context(key string, value any) *Builder {
	if b.def.InitialContext == nil {
		b.def.InitialContext = make(map[string]any)
	}
	b.def.InitialContext[key] = value
	return b
}

// State creates or reopens a state by id.
func (b *Builder) State(id StateID) *StateBuilder {
	node := b.def.States[id]
	if node == nil {
		node = &StateNode{}
		b.def.States[id] = node
	}
	return &StateBuilder{b: b, id: id, node: node}
}

// Build validates the assembled definition and returns it.
func (b *Builder) Build() (Definition, error) {
	if err := b.def.Validate(); err != nil {
		return Definition{}, err
	}
	return b.def, nil
}

// Entry appends entry actions, run whenever the state is entered.
func (sb *StateBuilder) Entry(actions ...ActionRef) *StateBuilder {
	sb.node.Entry = append(sb.node.Entry, actions...)
	return sb
}

// Exit appends exit actions, run whenever the state is exited.
func (sb *StateBuilder) Exit(actions ...ActionRef) *StateBuilder {
	sb.node.Exit = append(sb.node.Exit, actions...)
	return sb
}

// On adds an unguarded transition candidate for event to target, with
// optional transition actions.
func (sb *StateBuilder) On(event EventType, target StateID, actions ...ActionRef) *StateBuilder {
	return sb.OnGuarded(event, target, "", actions...)
}

// OnGuarded adds a guarded transition candidate. Candidates for the same
// event are tried in the order they were added; an empty guard always
// matches.
func (sb *StateBuilder) OnGuarded(event EventType, target StateID, guard GuardRef, actions ...ActionRef) *StateBuilder {
	if sb.node.On == nil {
		sb.node.On = make(map[EventType][]Transition)
	}
	sb.node.On[event] = append(sb.node.On[event], Transition{
		Target:  target,
		Guard:   guard,
		Actions: actions,
	})
	return sb
}

// Internal adds a self-transition: its actions run without crossing the
// state boundary, so entry and exit actions stay silent.
func (sb *StateBuilder) Internal(event EventType, actions ...ActionRef) *StateBuilder {
	return sb.On(event, sb.id, actions...)
}

// State moves on to another state, allowing chained definitions.
func (sb *StateBuilder) State(id StateID) *StateBuilder {
	return sb.b.State(id)
}

// Build finishes the machine, delegating to the underlying Builder.
func (sb *StateBuilder) Build() (Definition, error) {
	return sb.b.Build()
}
