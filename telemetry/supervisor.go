package telemetry

import (
	"sync"
	"time"

	"github.com/embeddedkit/m0core/ambient"
)

// Writer is the narrow channel write this package needs, satisfied by
// channel.Driver.Channel(channel.Vitals) without importing package channel
// (interface segregation, mirrored from tokenlog.Writer).
type Writer interface {
	Write(p []byte) (n int, ok bool)
}

// TaskSnapshot is one task's state as Sampler reports it. It carries the
// same fields as sched.Snapshot (minus Name) in wire-sized types, so
// callers adapting a sched.Supervisor convert and clamp field by field
// (boot does this for Priority and StackHWM).
type TaskSnapshot struct {
	Number   uint8
	State    uint8
	Priority uint8
	StackHWM uint16 // words
	Runtime  uint32 // free-running ticks, same clock as TaskSource.AggregateRuntime
}

// TaskSource is the narrow view of sched.Supervisor this package needs: the
// aggregate free-running runtime counter CPU% deltas are computed against
// (spec §4.3).
type TaskSource interface {
	AggregateRuntime() uint32
}

// Sampler takes a snapshot of every live task.
type Sampler func() []TaskSnapshot

// HeapStats reports the embedded allocator's current and historical-minimum
// free heap (spec §3's `free_heap`/`min_free_heap` header fields). A real
// target wires this to its allocator; the host wires it to an approximation
// derived from the Go runtime's memory statistics (see heap_host.go).
type HeapStats interface {
	FreeHeap() uint32
	MinFreeHeap() uint32
}

// Checkin is called once per sample, letting the cooperative watchdog (C6)
// treat "telemetry completed a sample" as this task's proof of life (spec
// §4.6: "any task registered with the watchdog checks in from its own
// natural execution point").
type Checkin func()

// Supervisor periodically samples every task's runtime counter, computes a
// wrap-safe CPU% delta against the previous sample, and writes a telemetry
// packet to Writer (spec §4.3).
type Supervisor struct {
	w        Writer
	source   TaskSource
	sample   Sampler
	heap     HeapStats
	interval time.Duration
	checkin  Checkin
	amb      ambient.Logger
	start    time.Time

	mu       sync.Mutex
	prevAgg  uint32
	prevTask map[uint8]uint32
	havePrev bool
}

// NewSupervisor constructs a telemetry Supervisor sampling every interval
// and writing to w. checkin may be nil if no watchdog bit is registered for
// this task; heap may be nil, in which case free_heap/min_free_heap report
// zero.
func NewSupervisor(w Writer, source TaskSource, sample Sampler, heap HeapStats, interval time.Duration, checkin Checkin, amb ambient.Logger) *Supervisor {
	return &Supervisor{
		w:        w,
		source:   source,
		sample:   sample,
		heap:     heap,
		interval: interval,
		checkin:  checkin,
		amb:      amb.With("telemetry"),
		start:    time.Now(),
		prevTask: make(map[uint8]uint32),
	}
}

// Sample takes one reading, computes CPU% deltas, and writes the resulting
// packet. It is exported separately from Run so tests can drive single
// samples deterministically.
func (s *Supervisor) Sample() Packet {
	s.mu.Lock()
	defer s.mu.Unlock()

	snaps := s.sample()
	if len(snaps) > MaxTasks {
		s.amb.Warn("truncating telemetry sample", map[string]any{
			"task_count": len(snaps),
			"max_tasks":  MaxTasks,
		})
		snaps = snaps[:MaxTasks]
	}

	agg := s.source.AggregateRuntime()
	aggDelta := agg - s.prevAgg // unsigned wraparound subtraction, wrap-safe

	entries := make([]Entry, len(snaps))
	for i, sn := range snaps {
		var pct uint8
		if s.havePrev && aggDelta > 0 {
			prevTaskRuntime := s.prevTask[sn.Number]
			taskDelta := sn.Runtime - prevTaskRuntime // wrap-safe
			pct = cpuPercent(taskDelta, aggDelta)
		}
		entries[i] = Entry{
			TaskNumber: sn.Number,
			State:      sn.State,
			Priority:   sn.Priority,
			StackHWM:   sn.StackHWM,
			CPUPercent: pct,
			RuntimeMS:  ticksToTruncatedMS(sn.Runtime),
		}
		s.prevTask[sn.Number] = sn.Runtime
	}

	s.prevAgg = agg
	s.havePrev = true

	var freeHeap, minFreeHeap uint32
	if s.heap != nil {
		freeHeap = s.heap.FreeHeap()
		minFreeHeap = s.heap.MinFreeHeap()
	}

	pkt := Packet{
		TimestampTicks: uint32(time.Since(s.start).Microseconds()),
		FreeHeap:       freeHeap,
		MinFreeHeap:    minFreeHeap,
		Tasks:          entries,
	}

	var buf [MaxPacketSize]byte
	wire := Encode(buf[:0], pkt)
	if _, ok := s.w.Write(wire); !ok {
		s.amb.Warn("telemetry packet dropped, channel full", nil)
	}

	if s.checkin != nil {
		s.checkin()
	}

	return pkt
}

// ticksToTruncatedMS converts microsecond ticks to the wire's truncated
// uint16 millisecond field (spec §3: "runtime_ms (truncated)").
func ticksToTruncatedMS(ticks uint32) uint16 {
	return uint16(ticks / 1000)
}

// cpuPercent computes a task's share of elapsed aggregate runtime, clamped
// to [0,100] (spec §4.3, §8 item 6): a task cannot observably consume more
// than 100% of the window even if counter sampling races make the raw ratio
// briefly exceed it.
func cpuPercent(taskDelta, aggDelta uint32) uint8 {
	if aggDelta == 0 {
		return 0
	}
	pct := uint64(taskDelta) * 100 / uint64(aggDelta)
	if pct > 100 {
		pct = 100
	}
	return uint8(pct)
}

// Run samples on a fixed cadence computed from successive absolute
// deadlines (not "sleep(interval)" after each sample), so sampling jitter
// from a slow Write never accumulates drift — the same idiom the teacher's
// event loop uses for its timer wheel. It returns when stop fires; callers
// typically run this in its own goroutine via sched.Supervisor.Run.
func (s *Supervisor) Run(stop <-chan struct{}) {
	next := time.Now().Add(s.interval)
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
			s.Sample()
			next = next.Add(s.interval)
			d := time.Until(next)
			if d < 0 {
				// we fell behind by more than one interval; resync instead
				// of firing a storm of immediate samples.
				next = time.Now().Add(s.interval)
				d = s.interval
			}
			timer.Reset(d)
		}
	}
}
