package sched

import (
	"sync"
	"sync/atomic"
	"time"
)

// EventGroupBits is the width of the event-bit group spec §4.6 specifies:
// "a 24-bit event-bit group."
const EventGroupBits = 24

// EventGroupMask masks a value down to the 24 bits an EventGroup uses.
const EventGroupMask = 1<<EventGroupBits - 1

// EventGroup is a small set-of-bits rendezvous primitive, standing in for
// the RTOS event-group object the cooperative watchdog (C6) is built on
// (spec §4.6 "create the event-bit group").
type EventGroup struct {
	bits atomic.Uint32
	mu   sync.Mutex
	cond *sync.Cond
}

// NewEventGroup constructs an empty event group.
func NewEventGroup() *EventGroup {
	g := &EventGroup{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Set ORs bits into the group and wakes any waiter, safe to call from any
// task context (spec §4.6 "non-blocking; safe from any task").
func (g *EventGroup) Set(bits uint32) {
	for {
		cur := g.bits.Load()
		next := cur | (bits & EventGroupMask)
		if cur == next {
			break
		}
		if g.bits.CompareAndSwap(cur, next) {
			break
		}
	}
	g.cond.Broadcast()
}

// Observed returns the bits currently set, without clearing them.
func (g *EventGroup) Observed() uint32 {
	return g.bits.Load()
}

// WaitAll blocks until every bit in want is set, or timeout elapses,
// matching spec §4.6's monitor algorithm step 1 ("wait up to P for all
// registered_bits to be set, clearing on exit"). On success the matched
// bits are cleared and ok is true; on timeout the bits are left untouched
// and ok is false, with observed reporting whatever had been set so the
// caller can compute the missing set.
func (g *EventGroup) WaitAll(want uint32, timeout time.Duration) (observed uint32, ok bool) {
	want &= EventGroupMask
	if want == 0 {
		return g.bits.Load(), true
	}

	deadline := time.Now().Add(timeout)

	g.mu.Lock()
	defer g.mu.Unlock()
	for {
		cur := g.bits.Load()
		if cur&want == want {
			g.bits.Store(cur &^ want)
			return cur, true
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return cur, false
		}

		// wake ourselves at the deadline even if Set is never called
		// again, so a missing check-in is reported rather than hung on
		// forever.
		timer := time.AfterFunc(remaining, g.cond.Broadcast)
		g.cond.Wait()
		timer.Stop()
	}
}
