package sched

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot is one task's state as the non-blocking kernel introspection
// call of spec §4.3 would return it.
type Snapshot struct {
	Number   uint8
	Name     string
	State    TaskState
	Priority int
	StackHWM uint32
	Runtime  uint32
}

// Supervisor is the minimal kernel-introspection surface this repository
// needs: task registration, a non-blocking snapshot of every task, and the
// single aggregate free-running runtime counter spec §4.3 computes CPU%
// deltas against.
type Supervisor struct {
	mu         sync.Mutex
	tasks      []*Task
	nextNumber uint8

	started atomic.Bool
	start   time.Time

	bindMu sync.Mutex
	bound  map[uint64]*Task
}

// NewSupervisor constructs an idle (pre-scheduler) Supervisor.
func NewSupervisor() *Supervisor {
	return &Supervisor{
		start: time.Now(),
		bound: make(map[uint64]*Task),
	}
}

// Register assigns a new, stable task number and adds the task to the
// table. Numbers are never reused (Open Question decision 1, DESIGN.md).
func (s *Supervisor) Register(name string, priority, coreID int) *Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := newTask(s.nextNumber, name, priority, coreID)
	s.nextNumber++
	s.tasks = append(s.tasks, t)
	return t
}

// Snapshot returns the state of every registered task, in registration
// order, without suspending scheduling (spec §4.3: "non-blocking kernel
// introspection call").
func (s *Supervisor) Snapshot() []Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Snapshot, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = Snapshot{
			Number:   t.Number,
			Name:     t.Name,
			State:    t.State(),
			Priority: t.Priority,
			StackHWM: t.StackHighWaterMark(),
			Runtime:  t.Runtime(),
		}
	}
	return out
}

// Start flips the scheduler-started predicate (spec §9).
func (s *Supervisor) Start() {
	s.started.Store(true)
}

// Started reports whether Start has been called.
func (s *Supervisor) Started() bool {
	return s.started.Load()
}

// AggregateRuntime is the free-running 1MHz counter spec §4.3 divides
// per-task deltas against ("the aggregate runtime counter"), modeled as
// wall-clock time elapsed since the Supervisor was created, scaled to
// microsecond ticks and wrapped to 32 bits exactly as the real hardware
// counter wraps at ~71 minutes (spec §4.3, §9).
func (s *Supervisor) AggregateRuntime() uint32 {
	return TicksFromDuration(time.Since(s.start))
}

// Bind marks the calling goroutine as currently executing t, so
// CurrentTask (used by package fault to attribute a fault to a task) can
// find it. Run wraps this for the common case of a task's main loop.
func (s *Supervisor) Bind(t *Task) {
	s.bindMu.Lock()
	defer s.bindMu.Unlock()
	s.bound[goroutineID()] = t
}

// Unbind removes the calling goroutine's task association.
func (s *Supervisor) Unbind() {
	s.bindMu.Lock()
	defer s.bindMu.Unlock()
	delete(s.bound, goroutineID())
}

// CurrentTask returns the task bound to the calling goroutine, if any. This
// is the lock-free-in-spirit (read-mostly, uncontended in practice) stand-in
// for spec §4.4's "current-task handle" kernel read, available to the fault
// path.
func (s *Supervisor) CurrentTask() (*Task, bool) {
	s.bindMu.Lock()
	defer s.bindMu.Unlock()
	t, ok := s.bound[goroutineID()]
	return t, ok
}

// runtimeFlushInterval is how often Run accrues a running task's elapsed
// wall-clock time onto its runtime counter. Most tasks run a for-select
// loop for the process's lifetime (boot.TaskSpec's contract), so waiting
// for fn to return before the first AddRuntime call would leave
// telemetry.Supervisor.Sample observing Runtime()==0, and cpu_pct stuck at
// 0, for the task's entire life (spec §4.3, §8 item 6).
const runtimeFlushInterval = 100 * time.Millisecond

// Run binds the calling goroutine to t for the duration of fn, marking the
// task Running on entry and Ready on return, and incrementally accruing
// fn's wall-clock duration to t's runtime counter every
// runtimeFlushInterval while fn is still executing, with a final flush for
// the remainder once it returns. It is the harness every long-running task
// (telemetry's loop, an application task) is expected to use.
func (s *Supervisor) Run(t *Task, fn func()) {
	s.Bind(t)
	defer s.Unbind()

	t.SetState(TaskRunning)
	start := time.Now()
	last := start

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(runtimeFlushInterval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case now := <-ticker.C:
				t.AddRuntime(TicksFromDuration(now.Sub(last)))
				last = now
			}
		}
	}()

	defer func() {
		close(stop)
		wg.Wait()
		t.AddRuntime(TicksFromDuration(time.Since(last)))
		t.SetState(TaskReady)
	}()

	fn()
}
