// Package debounce delays a call until its trigger stops firing.
package debounce

import (
	"sync"
	"time"
)

// State reports whether a call is waiting to run.
type State int

const (
	Idle State = iota
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Handle identifies one scheduled call.
type Handle uint64

// Timer runs at most one scheduled call at a time. Scheduling again before the
// delay elapses replaces the pending call and restarts the delay. The zero
// value is ready to use.
type Timer struct {
	mu      sync.Mutex
	seq     uint64
	pending bool
	timer   *time.Timer
}

// Schedule arranges for fn to run after d, cancelling any pending call, and
// returns the new call's handle. fn runs on its own goroutine and receives
// that handle.
func (t *Timer) Schedule(d time.Duration, fn func(Handle)) Handle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.timer != nil {
		t.timer.Stop()
	}
	t.seq++
	h := Handle(t.seq)
	t.pending = true
	t.timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if Handle(t.seq) != h || !t.pending {
			t.mu.Unlock()
			return
		}
		t.pending = false
		t.timer = nil
		t.mu.Unlock()
		fn(h)
	})
	return h
}

// Cancel drops the pending call. It reports whether a call was pending.
func (t *Timer) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.pending {
		return false
	}
	t.timer.Stop()
	t.timer = nil
	t.pending = false
	t.seq++
	return true
}

// State returns Pending while a call is waiting to run.
func (t *Timer) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.pending {
		return Pending
	}
	return Idle
}

// Keyed debounces calls independently per key.
type Keyed struct {
	mu     sync.Mutex
	timers map[string]*Timer
}

// Schedule debounces fn under key.
func (k *Keyed) Schedule(key string, d time.Duration, fn func()) {
	k.mu.Lock()
	if k.timers == nil {
		k.timers = make(map[string]*Timer)
	}
	t, ok := k.timers[key]
	if !ok {
		t = &Timer{}
		k.timers[key] = t
	}
	k.mu.Unlock()
	t.Schedule(d, func(Handle) { fn() })
}

// Cancel drops the pending call for key.
func (k *Keyed) Cancel(key string) bool {
	k.mu.Lock()
	t, ok := k.timers[key]
	k.mu.Unlock()
	return ok && t.Cancel()
}

// CancelAll drops every pending call.
func (k *Keyed) CancelAll() {
	k.mu.Lock()
	timers := k.timers
	k.timers = nil
	k.mu.Unlock()
	for _, t := range timers {
		t.Cancel()
	}
}

// Pending returns the number of keys with a call waiting to run.
func (k *Keyed) Pending() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	n := 0
	for _, t := range k.timers {
		if t.State() == Pending {
			n++
		}
	}
	return n
}
