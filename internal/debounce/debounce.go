// Package debounce delays a call until input activity pauses.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs fn once delay has elapsed since the last Trigger.
// A Trigger while a call is pending cancels it and restarts the timer.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	pending bool
	gen     uint64
}

// New returns a Debouncer for fn.
func New(delay time.Duration, fn func()) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Trigger schedules fn, replacing any pending call.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.pending = true
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// Stop cancels a pending call. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.pending {
		return false
	}
	d.timer.Stop()
	d.pending = false
	d.gen++
	return true
}

// Flush runs a pending call now instead of waiting for the timer.
func (d *Debouncer) Flush() {
	if d.Stop() {
		d.fn()
	}
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pending
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	// A Stop or a newer Trigger raced with this timer.
	if gen != d.gen || !d.pending {
		d.mu.Unlock()
		return
	}
	d.pending = false
	d.mu.Unlock()
	d.fn()
}

// Func wraps fn: call restarts the delay, cancel drops a pending call.
func Func(delay time.Duration, fn func()) (call func(), cancel func()) {
	d := New(delay, fn)
	return d.Trigger, func() { d.Stop() }
}
