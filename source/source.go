// Package source feeds events into an interpreter from the outside world.
//
// The engine itself is synchronous and single-owner: Send must not be called
// concurrently on one interpreter. Dispatcher provides the single dispatch
// queue that makes multi-goroutine hosts safe, and BindWatch adapts the
// watch(onValue, onError) -> unwatch() contract of long-running external
// sources (position streams and the like) into events.
package source

import (
	"errors"
	"sync"
	"time"

	"github.com/corvid-labs/fsmkit"
)

// ErrQueueFull is returned by Dispatcher.Send when the queue is saturated.
var ErrQueueFull = errors.New("event queue full")

// ErrDispatcherStopped is returned by Dispatcher.Send after Stop.
var ErrDispatcherStopped = errors.New("dispatcher stopped")

// Sender is the subset of the interpreter the package needs. Satisfied by
// *fsmkit.Interpreter.
type Sender interface {
	Send(event fsmkit.Event) (fsmkit.Snapshot, error)
}

// Dispatcher serializes Sends from concurrent producers through a buffered
// queue drained by a single goroutine, so the interpreter's one-event-at-a-
// time contract holds no matter how many goroutines produce events.
type Dispatcher struct {
	target  Sender
	queue   chan fsmkit.Event
	done    chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
	onError func(fsmkit.Event, error)
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithQueueSize sets the queue buffer. Default 64.
func WithQueueSize(n int) DispatcherOption {
	return func(d *Dispatcher) {
		d.queue = make(chan fsmkit.Event, n)
	}
}

// WithErrorHandler receives send failures from the dispatch goroutine.
// Without one, failures are dropped.
func WithErrorHandler(fn func(fsmkit.Event, error)) DispatcherOption {
	return func(d *Dispatcher) {
		d.onError = fn
	}
}

// NewDispatcher creates and starts a dispatcher draining into target.
func NewDispatcher(target Sender, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		target: target,
		queue:  make(chan fsmkit.Event, 64),
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case event := <-d.queue:
			if _, err := d.target.Send(event); err != nil && d.onError != nil {
				d.onError(event, err)
			}
		case <-d.done:
			// Drain what is already queued, then exit.
			for {
				select {
				case event := <-d.queue:
					if _, err := d.target.Send(event); err != nil && d.onError != nil {
						d.onError(event, err)
					}
				default:
					return
				}
			}
		}
	}
}

// Send enqueues an event without blocking. Returns ErrQueueFull under
// backpressure and ErrDispatcherStopped after Stop.
func (d *Dispatcher) Send(event fsmkit.Event) error {
	select {
	case <-d.done:
		return ErrDispatcherStopped
	default:
	}
	select {
	case d.queue <- event:
		return nil
	default:
		return ErrQueueFull
	}
}

// Stop shuts the dispatch goroutine down after draining queued events.
// Idempotent; blocks until the goroutine has exited.
func (d *Dispatcher) Stop() {
	d.stopped.Do(func() {
		close(d.done)
	})
	d.wg.Wait()
}

// WatchFunc is the external collaborator contract: start watching, report
// values and errors through the callbacks, and return a teardown function.
type WatchFunc func(onValue func(any), onError func(error)) (unwatch func())

// BindWatch wires a watcher into an event sender: values become events of
// resolveType with the value as payload, errors become events of rejectType
// with the error as payload. The returned teardown invokes the watcher's
// unwatch exactly once, regardless of how many times it is called, and is
// independent of stopping the interpreter.
func BindWatch(send func(fsmkit.Event) error, watch WatchFunc, resolveType, rejectType fsmkit.EventType) (teardown func()) {
	unwatch := watch(
		func(v any) {
			_ = send(fsmkit.NewEvent(resolveType, v))
		},
		func(err error) {
			_ = send(fsmkit.NewEvent(rejectType, err))
		},
	)
	var once sync.Once
	return func() {
		once.Do(unwatch)
	}
}

// Ticker emits a fixed event into a sender at a regular interval. Useful for
// timeout and heartbeat machines.
type Ticker struct {
	stop    chan struct{}
	stopped sync.Once
	wg      sync.WaitGroup
}

// NewTicker starts a ticker sending Event{Type: eventType, Payload: payload}
// every interval. Send errors are dropped; the machine decides whether the
// tick matters.
func NewTicker(send func(fsmkit.Event) error, eventType fsmkit.EventType, payload any, interval time.Duration) *Ticker {
	t := &Ticker{stop: make(chan struct{})}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_ = send(fsmkit.NewEvent(eventType, payload))
			case <-t.stop:
				return
			}
		}
	}()
	return t
}

// Stop halts the ticker and waits for its goroutine to exit. Idempotent.
func (t *Ticker) Stop() {
	t.stopped.Do(func() {
		close(t.stop)
	})
	t.wg.Wait()
}
