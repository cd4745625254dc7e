// Package debounce provides deferred-call scheduling used to coalesce
// bursts of editor events into a single trailing invocation.
package debounce

import (
	"sync"
	"time"

	"github.com/juju/clock"
)

// Deferred wraps a single pending invocation of a callback that can be
// cancelled or rescheduled. At most one invocation is pending at a time and
// the most recently scheduled payload wins.
//
// Time is read from a clock.Clock so tests can drive the delay
// deterministically; production callers use the wall clock.
//
// Thread-safety: all methods are safe for concurrent use. The callback is
// never invoked concurrently with itself from the same Deferred.
type Deferred[T any] struct {
	mu      sync.Mutex
	clk     clock.Clock
	delay   time.Duration
	timer   clock.Timer
	pending bool
	seq     uint64 // invalidates stale timer callbacks
	payload T
	fn      func(T)
}

// Option configures a Deferred.
type Option[T any] func(*Deferred[T])

// WithClock sets the clock used for scheduling. Defaults to the wall clock.
func WithClock[T any](clk clock.Clock) Option[T] {
	return func(d *Deferred[T]) {
		d.clk = clk
	}
}

// NewDeferred creates a deferred call that invokes fn with the most recently
// scheduled payload once no Schedule call has arrived for 'delay'.
func NewDeferred[T any](delay time.Duration, fn func(T), opts ...Option[T]) *Deferred[T] {
	d := &Deferred[T]{
		clk:   clock.WallClock,
		delay: delay,
		fn:    fn,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Schedule arms (or re-arms) the deferred call with the given payload.
//
// If an invocation is already pending, its countdown restarts and its
// payload is replaced; the trailing edge fires exactly once per quiet
// window.
func (d *Deferred[T]) Schedule(payload T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.pending = true
	d.payload = payload
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}

	d.timer = d.clk.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if !d.pending || d.seq != seq || d.fn == nil {
			d.mu.Unlock()
			return
		}
		d.pending = false
		payload := d.payload
		d.mu.Unlock()
		d.fn(payload)
	})
}

// Cancel discards any pending invocation without running it.
func (d *Deferred[T]) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++
	d.pending = false
}

// Flush runs the callback immediately if an invocation is pending,
// cancelling the scheduled one.
func (d *Deferred[T]) Flush() {
	d.mu.Lock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.seq++

	if d.pending && d.fn != nil {
		d.pending = false
		payload := d.payload
		d.mu.Unlock()
		d.fn(payload)
		return
	}
	d.mu.Unlock()
}

// IsPending returns true if an invocation is scheduled and has not fired.
func (d *Deferred[T]) IsPending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

// Delay returns the configured quiet-window duration.
func (d *Deferred[T]) Delay() time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.delay
}
