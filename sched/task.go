package sched

import (
	"sync/atomic"
	"time"
)

// TaskState mirrors the small set of states spec §3's telemetry entry
// reports (task_number, state, priority, stack_hwm, cpu_pct, runtime_ms).
type TaskState uint8

const (
	TaskReady TaskState = iota
	TaskRunning
	TaskBlocked
	TaskSuspended
)

// TicksFromDuration converts a wall-clock duration to ticks of the
// simulated free-running 1MHz hardware counter spec §4.3 specifies
// ("free-running 1 MHz hardware counter that wraps at ~71 minutes").
func TicksFromDuration(d time.Duration) uint32 {
	return uint32(d.Microseconds())
}

// Task is one kernel-tracked task/thread. Number is assigned once at
// registration and never reused for the life of the process (Open Question
// decision 1 in DESIGN.md: stable task numbering, as the spec requires).
type Task struct {
	Number   uint8
	Name     string
	Priority int
	CoreID   int

	state    atomic.Uint32
	runtime  atomic.Uint32 // ticks, wrap-safe per spec §9
	stackHWM atomic.Uint32 // words
}

func newTask(number uint8, name string, priority, coreID int) *Task {
	t := &Task{Number: number, Name: name, Priority: priority, CoreID: coreID}
	t.state.Store(uint32(TaskReady))
	return t
}

// SetState records the task's current scheduling state.
func (t *Task) SetState(s TaskState) {
	t.state.Store(uint32(s))
}

// State returns the task's current scheduling state.
func (t *Task) State() TaskState {
	return TaskState(t.state.Load())
}

// AddRuntime adds delta ticks to this task's free-running runtime counter,
// wrapping the same way the underlying 32-bit hardware counter would.
func (t *Task) AddRuntime(delta uint32) {
	t.runtime.Add(delta)
}

// Runtime returns the task's raw (wrapping) runtime tick counter.
func (t *Task) Runtime() uint32 {
	return t.runtime.Load()
}

// SetStackHighWaterMark records the deepest stack usage observed for this
// task, in words, as spec §3's stack_hwm field reports.
func (t *Task) SetStackHighWaterMark(words uint32) {
	for {
		cur := t.stackHWM.Load()
		if words <= cur {
			return
		}
		if t.stackHWM.CompareAndSwap(cur, words) {
			return
		}
	}
}

// StackHighWaterMark returns the deepest stack usage observed, in words.
func (t *Task) StackHighWaterMark() uint32 {
	return t.stackHWM.Load()
}
