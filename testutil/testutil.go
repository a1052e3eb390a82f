// Package testutil provides helpers for testing machines built on fsmkit:
// a snapshot recorder for subscription assertions and an ordered call log
// for verifying action and guard sequencing.
package testutil

import (
	"sync"

	"github.com/corvid-labs/fsmkit"
)

// Recorder collects every snapshot delivered to it. Use Recorder.Listen as a
// Subscribe callback.
type Recorder struct {
	mu        sync.Mutex
	snapshots []fsmkit.Snapshot
}

// Listen appends the snapshot to the recording.
func (r *Recorder) Listen(snap fsmkit.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snapshots = append(r.snapshots, snap)
}

// Snapshots returns a copy of everything recorded so far.
func (r *Recorder) Snapshots() []fsmkit.Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]fsmkit.Snapshot, len(r.snapshots))
	copy(out, r.snapshots)
	return out
}

// Count returns the number of recorded snapshots.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.snapshots)
}

// Last returns the most recent snapshot and whether one exists.
func (r *Recorder) Last() (fsmkit.Snapshot, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.snapshots) == 0 {
		return fsmkit.Snapshot{}, false
	}
	return r.snapshots[len(r.snapshots)-1], true
}

// CallLog records action and guard invocations in order, the side channel
// for asserting exit -> transition -> entry sequencing.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

// Action returns an ActionFunc that appends name to the log and succeeds.
func (l *CallLog) Action(name string) fsmkit.ActionFunc {
	return func(ctx *fsmkit.Context, event fsmkit.Event) error {
		l.append(name)
		return nil
	}
}

// FailingAction returns an ActionFunc that appends name and fails with err.
func (l *CallLog) FailingAction(name string, err error) fsmkit.ActionFunc {
	return func(ctx *fsmkit.Context, event fsmkit.Event) error {
		l.append(name)
		return err
	}
}

// Guard returns a GuardFunc that appends name and answers result.
func (l *CallLog) Guard(name string, result bool) fsmkit.GuardFunc {
	return func(ctx *fsmkit.Context, event fsmkit.Event) (bool, error) {
		l.append(name)
		return result, nil
	}
}

func (l *CallLog) append(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, name)
}

// Calls returns a copy of the recorded call order.
func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.calls))
	copy(out, l.calls)
	return out
}

// Reset clears the log.
func (l *CallLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}
