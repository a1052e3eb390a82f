package fsmkit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// ActionFunc is a side-effecting action implementation. It may read and
// mutate the context; errors propagate synchronously out of Send with no
// rollback of earlier writes in the same pipeline.
type ActionFunc func(ctx *Context, event Event) error

// GuardFunc decides whether a transition candidate applies.
type GuardFunc func(ctx *Context, event Event) (bool, error)

// ActionMap supplies implementations for the ActionRefs of a Definition.
type ActionMap map[ActionRef]ActionFunc

// GuardMap supplies implementations for the GuardRefs of a Definition.
type GuardMap map[GuardRef]GuardFunc

// Snapshot is the externally observable result after each processed event.
// Context holds a copy made at snapshot time; a delivered Snapshot is never
// mutated afterwards.
type Snapshot struct {
	State   StateID
	Context map[string]any
}

// Interpreter phases. An interpreter never returns to Running once stopped;
// construct a new one to restart.
const (
	phaseRunning int32 = iota
	phaseStopped
)

// boundAction pairs an ActionRef with its resolved implementation.
type boundAction struct {
	ref ActionRef
	fn  ActionFunc
}

// boundTransition is a Transition with guard and actions resolved.
type boundTransition struct {
	target   StateID
	guardRef GuardRef
	guard    GuardFunc // nil when the candidate is unguarded
	actions  []boundAction
}

// boundState is a StateNode with every reference resolved.
type boundState struct {
	entry []boundAction
	exit  []boundAction
	on    map[EventType][]boundTransition
}

// Interpreter executes one running instance of a Definition against a
// sequence of events, synchronously and deterministically.
//
// Send is not safe for concurrent overlapping calls; the caller delivers
// events one at a time (source.Dispatcher provides a serialized queue for
// multi-goroutine hosts). Multiple Interpreters may share one Definition.
type Interpreter struct {
	def      Definition
	id       string // instance id, distinct from def.ID
	states   map[StateID]*boundState
	current  StateID
	ctx      *Context
	last     Snapshot
	phase    atomic.Int32
	base     context.Context

	subMu sync.Mutex
	subs  []subscriber

	logger Logger
	traced bool
}

type subscriber struct {
	id int
	fn func(Snapshot)
}

// New constructs an Interpreter for def. The definition is validated and
// every action/guard reference is resolved eagerly, so configuration errors
// surface here rather than on first use. On success the initial state has
// been entered: its entry actions have run and the first Snapshot exists.
func New(def Definition, actions ActionMap, guards GuardMap, opts ...Option) (*Interpreter, error) {
	if err := def.Validate(); err != nil {
		return nil, err
	}
	if err := resolveRefs(def, actions, guards); err != nil {
		return nil, err
	}

	in := &Interpreter{
		def:     def,
		id:      uuid.NewString(),
		states:  bindStates(def, actions, guards),
		current: def.Initial,
		ctx:     newContextFrom(def.InitialContext),
		base:    context.Background(),
	}
	for _, opt := range opts {
		opt(in)
	}

	// Entering the initial state is itself an entry.
	if err := in.runActions(in.base, phaseEntry, def.Initial, in.states[def.Initial].entry, Event{}); err != nil {
		return nil, err
	}
	in.last = in.snapshot()

	if in.logger != nil {
		in.logger.StateEntered(in.base, in.def.ID, def.Initial, in.last.Context)
	}

	return in, nil
}

// resolveRefs checks that every reference in def has an implementation.
func resolveRefs(def Definition, actions ActionMap, guards GuardMap) error {
	var err error
	def.actionRefs(func(ref ActionRef) {
		if err == nil {
			if _, ok := actions[ref]; !ok {
				err = &MissingActionError{Ref: ref}
			}
		}
	})
	if err != nil {
		return err
	}
	def.guardRefs(func(ref GuardRef) {
		if err == nil {
			if _, ok := guards[ref]; !ok {
				err = &MissingGuardError{Ref: ref}
			}
		}
	})
	return err
}

// bindStates precomputes the resolved lookup structure for the send path.
func bindStates(def Definition, actions ActionMap, guards GuardMap) map[StateID]*boundState {
	bind := func(refs []ActionRef) []boundAction {
		if len(refs) == 0 {
			return nil
		}
		bound := make([]boundAction, len(refs))
		for i, ref := range refs {
			bound[i] = boundAction{ref: ref, fn: actions[ref]}
		}
		return bound
	}

	states := make(map[StateID]*boundState, len(def.States))
	for id, node := range def.States {
		bs := &boundState{
			entry: bind(node.Entry),
			exit:  bind(node.Exit),
		}
		if len(node.On) > 0 {
			bs.on = make(map[EventType][]boundTransition, len(node.On))
			for event, candidates := range node.On {
				bound := make([]boundTransition, len(candidates))
				for i, t := range candidates {
					bound[i] = boundTransition{
						target:   t.Target,
						guardRef: t.Guard,
						actions:  bind(t.Actions),
					}
					if t.Guard != "" {
						bound[i].guard = guards[t.Guard]
					}
				}
				bs.on[event] = bound
			}
		}
		states[id] = bs
	}
	return states
}

// Definition returns the definition this interpreter runs.
func (in *Interpreter) Definition() Definition {
	return in.def
}

// InstanceID returns the unique identifier of this running instance.
func (in *Interpreter) InstanceID() string {
	return in.id
}

// Current returns the current state.
func (in *Interpreter) Current() StateID {
	return in.current
}

// Running reports whether the interpreter still accepts events.
func (in *Interpreter) Running() bool {
	return in.phase.Load() == phaseRunning
}

// LastSnapshot returns the most recently produced Snapshot.
func (in *Interpreter) LastSnapshot() Snapshot {
	return in.last
}

// Send processes one event and returns the resulting Snapshot.
//
// Events the current state has no transition for are a no-op, not an error:
// the prior Snapshot is returned (and subscribers still get their
// one-notification-per-send). Guard or action failures propagate to the
// caller; the pipeline halts where it failed and nothing is rolled back, so
// context writes by earlier actions of the same transition remain visible.
// On failure the machine stays in the source state.
func (in *Interpreter) Send(event Event) (Snapshot, error) {
	if in.phase.Load() != phaseRunning {
		return in.last, nil
	}

	start := time.Now()
	ctx, span := in.startSendSpan(in.base, event)

	chosen, err := in.selectTransition(event)
	if err != nil {
		recordSend(in.def.ID, event.Type, outcomeError, time.Since(start))
		endSendSpan(span, string(in.current), err)
		return in.last, err
	}
	if chosen == nil {
		// Unhandled: stay put, keep the notification contract.
		recordSend(in.def.ID, event.Type, outcomeUnhandled, time.Since(start))
		endSendSpan(span, string(in.current), nil)
		in.notify(in.last)
		return in.last, nil
	}

	source := in.current
	if chosen.target == source {
		// Internal transition: no boundary is crossed, so entry/exit
		// actions stay silent.
		if err := in.runActions(ctx, phaseTransition, source, chosen.actions, event); err != nil {
			recordSend(in.def.ID, event.Type, outcomeError, time.Since(start))
			endSendSpan(span, string(source), err)
			return in.last, err
		}
	} else {
		if err := in.crossTo(ctx, chosen, event); err != nil {
			recordSend(in.def.ID, event.Type, outcomeError, time.Since(start))
			endSendSpan(span, string(source), err)
			return in.last, err
		}
		in.current = chosen.target
		recordTransition(in.def.ID, source, chosen.target)
		if in.logger != nil {
			in.logger.TransitionFired(ctx, in.def.ID, source, chosen.target, event)
		}
	}

	in.last = in.snapshot()
	recordSend(in.def.ID, event.Type, outcomeHandled, time.Since(start))
	endSendSpan(span, string(in.current), nil)
	in.notify(in.last)
	return in.last, nil
}

// selectTransition picks the first candidate for the event whose guard
// passes, in definition order. Returns nil when the event is unhandled.
func (in *Interpreter) selectTransition(event Event) (*boundTransition, error) {
	candidates := in.states[in.current].on[event.Type]
	for i := range candidates {
		t := &candidates[i]
		if t.guard == nil {
			return t, nil
		}
		ok, err := t.guard(in.ctx, event)
		if err != nil {
			return nil, wrapSendError(in.def.ID, in.current, "guard "+string(t.guardRef), err)
		}
		if ok {
			return t, nil
		}
	}
	return nil, nil
}

// crossTo runs the full boundary-crossing pipeline:
// exit(source) -> transition actions -> entry(target).
func (in *Interpreter) crossTo(ctx context.Context, t *boundTransition, event Event) error {
	source := in.current
	if err := in.runActions(ctx, phaseExit, source, in.states[source].exit, event); err != nil {
		return err
	}
	if err := in.runActions(ctx, phaseTransition, source, t.actions, event); err != nil {
		return err
	}
	if err := in.runActions(ctx, phaseEntry, t.target, in.states[t.target].entry, event); err != nil {
		return err
	}
	if in.logger != nil {
		in.logger.StateExited(ctx, in.def.ID, source)
		in.logger.StateEntered(ctx, in.def.ID, t.target, nil)
	}
	return nil
}

// Action pipeline phases, used for logging and span naming.
const (
	phaseEntry      = "entry"
	phaseExit       = "exit"
	phaseTransition = "transition"
)

// runActions invokes bound actions sequentially; action i+1 sees the context
// as left by action i. The first failure halts the pipeline.
func (in *Interpreter) runActions(ctx context.Context, phase string, state StateID, actions []boundAction, event Event) error {
	for _, a := range actions {
		actx, span := in.startActionSpan(ctx, phase, a.ref, state)
		if in.logger != nil {
			in.logger.ActionStarted(actx, in.def.ID, a.ref, phase)
		}
		start := time.Now()
		err := a.fn(in.ctx, event)
		elapsed := time.Since(start)
		recordAction(in.def.ID, a.ref, phase, elapsed, err)
		if in.logger != nil {
			in.logger.ActionCompleted(actx, in.def.ID, a.ref, phase, elapsed, err)
		}
		endActionSpan(span, err)
		if err != nil {
			return wrapSendError(in.def.ID, state, "action "+string(a.ref), err)
		}
	}
	return nil
}

// Stop runs the exit actions of the current state, treating shutdown as a
// final exit, then marks the interpreter inert. Idempotent; subsequent Sends
// are no-ops returning the last Snapshot.
func (in *Interpreter) Stop() error {
	if !in.phase.CompareAndSwap(phaseRunning, phaseStopped) {
		return nil
	}
	err := in.runActions(in.base, phaseExit, in.current, in.states[in.current].exit, Event{})
	if in.logger != nil {
		in.logger.StateExited(in.base, in.def.ID, in.current)
	}
	return err
}

// Subscribe registers fn to receive every Snapshot produced by Send, and
// delivers the latest Snapshot immediately. The returned function removes
// the subscription; calling it more than once is a no-op.
func (in *Interpreter) Subscribe(fn func(Snapshot)) func() {
	in.subMu.Lock()
	id := 0
	if n := len(in.subs); n > 0 {
		id = in.subs[n-1].id + 1
	}
	in.subs = append(in.subs, subscriber{id: id, fn: fn})
	in.subMu.Unlock()

	fn(in.last)

	var once sync.Once
	return func() {
		once.Do(func() {
			in.subMu.Lock()
			defer in.subMu.Unlock()
			for i, s := range in.subs {
				if s.id == id {
					in.subs = append(in.subs[:i], in.subs[i+1:]...)
					return
				}
			}
		})
	}
}

// notify delivers snap to subscribers in registration order.
func (in *Interpreter) notify(snap Snapshot) {
	in.subMu.Lock()
	subs := make([]subscriber, len(in.subs))
	copy(subs, in.subs)
	in.subMu.Unlock()
	for _, s := range subs {
		s.fn(snap)
	}
}

// snapshot captures the current state and a copy of the context.
func (in *Interpreter) snapshot() Snapshot {
	return Snapshot{State: in.current, Context: in.ctx.Snapshot()}
}
