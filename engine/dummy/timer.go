// Package dummy provides a virtual clock that runs scheduled events in
// timestamp order on the calling goroutine.
package dummy

import (
	"errors"
	"math/rand"
	"time"

	"github.com/named-data/closersite/utils/priority_queue"
)

// ErrCanceled is returned when cancelling an event that already ran or was cancelled.
var ErrCanceled = errors.New("event has already been canceled")

type event struct {
	t        time.Time
	f        func()
	canceled bool
}

// Timer is a discrete-event clock. Time only moves when MoveForward, Step or
// RunUntil is called. Events with equal timestamps run in scheduling order.
type Timer struct {
	now    time.Time
	events priority_queue.Queue[*event, int64]
	rng    *rand.Rand
	ran    uint64
}

// NewTimer creates a clock starting at the Unix epoch with nonces drawn from seed.
func NewTimer(seed int64) *Timer {
	return &Timer{
		now:    time.Unix(0, 0).UTC(),
		events: priority_queue.New[*event, int64](),
		rng:    rand.New(rand.NewSource(seed)),
	}
}

func (tm *Timer) Now() time.Time {
	return tm.now
}

// Schedule runs f after d. Negative durations are treated as zero.
func (tm *Timer) Schedule(d time.Duration, f func()) func() error {
	if d < 0 {
		d = 0
	}
	e := &event{t: tm.now.Add(d), f: f}
	tm.events.Push(e, e.t.UnixNano())
	return func() error {
		if e.canceled || e.f == nil {
			return ErrCanceled
		}
		e.canceled = true
		return nil
	}
}

func (tm *Timer) Nonce() uint32 {
	return tm.rng.Uint32()
}

// Rand returns the random source of the clock.
func (tm *Timer) Rand() *rand.Rand {
	return tm.rng
}

// Pending returns the number of queued events, including cancelled ones not yet discarded.
func (tm *Timer) Pending() int {
	return tm.events.Len()
}

// EventsRun returns how many events have been executed.
func (tm *Timer) EventsRun() uint64 {
	return tm.ran
}

// Step runs the next event, advancing the clock to its time. It returns false if none is left.
func (tm *Timer) Step() bool {
	tm.dropCanceled()
	if tm.events.Len() == 0 {
		return false
	}
	tm.runHead()
	return true
}

// RunUntil runs every event scheduled at or before t, then sets the clock to t.
func (tm *Timer) RunUntil(t time.Time) {
	for {
		tm.dropCanceled()
		if tm.events.Len() == 0 || tm.events.PeekPriority() > t.UnixNano() {
			break
		}
		tm.runHead()
	}
	if t.After(tm.now) {
		tm.now = t
	}
}

// dropCanceled discards cancelled events at the head of the queue.
func (tm *Timer) dropCanceled() {
	for tm.events.Len() > 0 && tm.events.Peek().canceled {
		tm.events.Pop()
	}
}

func (tm *Timer) runHead() {
	e := tm.events.Pop()
	if e.t.After(tm.now) {
		tm.now = e.t
	}
	f := e.f
	e.f = nil
	tm.ran++
	f()
}

// MoveForward advances the clock by d, running every event that falls due.
func (tm *Timer) MoveForward(d time.Duration) {
	tm.RunUntil(tm.now.Add(d))
}

// Run executes events until none remain.
func (tm *Timer) Run() {
	for tm.Step() {
	}
}
