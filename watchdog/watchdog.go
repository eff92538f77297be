// Package watchdog implements C6, the Cooperative Watchdog: N tasks check
// in against a shared event-bit group; a monitor task feeds the real
// hardware watchdog only when every registered task has checked in within
// one monitor period, and writes a forensic record before letting the
// hardware watchdog fire otherwise (spec §4.6).
package watchdog

import (
	"sync"
	"time"

	"github.com/embeddedkit/m0core/ambient"
	"github.com/embeddedkit/m0core/nvram"
	"github.com/embeddedkit/m0core/sched"
)

// MonitorPeriod is the cooperative check-in period P (spec §4.6, §8 item 9).
// It must be strictly less than the hardware watchdog timeout (config
// enforces this, see config.Validate).
const MonitorPeriod = 5 * time.Second

// HW is the real hardware watchdog collaborator (spec §6): feed it or it
// resets the chip.
type HW interface {
	Feed()
}

// Bit is a single task's registered watchdog slot.
type Bit uint32

// Watchdog owns the 24-bit event-bit group and the monotonically growing
// set of registered bits.
type Watchdog struct {
	mu         sync.Mutex
	events     *sched.EventGroup
	registered uint32
	hw         HW
	store      nvram.Store
	amb        ambient.Logger
	period     time.Duration
	tick       uint32

	started bool
	stop    chan struct{}
}

// New constructs a Watchdog with period MonitorPeriod. It takes no HW
// timeout: the caller enables hw with its timeout (boot.Sequence does, from
// a config.Config whose Validate checks it exceeds MonitorPeriod).
func New(hw HW, store nvram.Store, amb ambient.Logger) *Watchdog {
	return &Watchdog{
		events: sched.NewEventGroup(),
		hw:     hw,
		store:  store,
		amb:    amb.With("watchdog"),
		period: MonitorPeriod,
		stop:   make(chan struct{}),
	}
}

// Register adds a new monitored bit, monotonically (spec §3: "Registration
// is monotonic additive"). It must be called before Start; registering
// after Start would change the success criterion the monitor is already
// waiting on mid-period.
func (w *Watchdog) Register(bit Bit) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.registered |= uint32(bit) & sched.EventGroupMask
}

// Checkin marks bit as observed for the current period (spec §4.6: "any
// task registered with the watchdog checks in from its own natural
// execution point"). Safe to call from any task, any core.
func (w *Watchdog) Checkin(bit Bit) {
	w.events.Set(uint32(bit))
}

// RegisteredBits returns the current registered-bit mask.
func (w *Watchdog) RegisteredBits() uint32 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.registered
}

// Start runs the monitor loop in the calling goroutine, so callers start it
// with `go` (boot.Sequence does). It returns once Stop is called, or after
// writing the forensic record for a missed check-in.
// Start refuses to run with no registered bits (spec §4.6, §7
// WatchdogStartWithoutRegistrations): a monitor with nothing to wait on
// would feed the hardware watchdog forever without ever observing a real
// task, defeating the whole point of the cooperative layer.
func (w *Watchdog) Start() {
	w.mu.Lock()
	if w.registered == 0 {
		w.mu.Unlock()
		w.amb.Error("watchdog start refused: no registered bits", nil)
		return
	}
	w.started = true
	want := w.registered
	w.mu.Unlock()

	ticker := time.NewTicker(w.period)
	defer ticker.Stop()

	for {
		select {
		case <-w.stop:
			return
		case <-ticker.C:
			w.mu.Lock()
			want = w.registered
			w.mu.Unlock()

			observed, ok := w.events.WaitAll(want, 0)
			w.tick++
			if ok {
				w.hw.Feed()
				continue
			}
			missing := want &^ observed
			w.forensics(missing, want)
			// do not feed: the hardware watchdog is now the backstop that
			// forces the reboot (spec §4.6, §8 item 9).
			return
		}
	}
}

// Stop ends the monitor loop.
func (w *Watchdog) Stop() {
	close(w.stop)
}

// Started reports whether Start has been called.
func (w *Watchdog) Started() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.started
}

func (w *Watchdog) forensics(missing, registered uint32) {
	w.amb.Error("cooperative watchdog timeout", map[string]any{
		"missing_bits":    missing,
		"registered_bits": registered,
		"tick":            w.tick,
	})
	if r, ok := w.store.(*nvram.Registers); ok {
		r.StoreFault(nvram.SentinelWatchdogTimeout, missing, w.tick, registered)
		return
	}
	w.store.Store([nvram.NumRegisters]uint32{0, missing, w.tick, registered})
	words := w.store.Load()
	words[0] = nvram.SentinelWatchdogTimeout
	w.store.Store(words)
}
