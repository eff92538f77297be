package fault

import "github.com/embeddedkit/m0core/nvram"

// Handler wraps a monitored task's entry point with a recover() boundary
// standing in for the CPU exception entry shim (see entry_arm.go for the
// real target). This host implementation cannot recover the faulting PC
// and LR a hardware exception frame would give it, so it synthesizes a
// Frame carrying only what Go's panic machinery actually exposes: the core
// and task identity the caller supplies and zeroed pc/lr/xpsr. On real
// hardware CaptureFromException (entry_arm.go) supplies the true frame.
type Handler struct {
	store  nvram.Store
	reboot func()
	core   int
	task   int
}

// NewHandler builds a Handler that attributes any recovered panic to core
// and task, and calls reboot once the crash record has been written.
func NewHandler(store nvram.Store, core, task int, reboot func()) *Handler {
	return &Handler{store: store, reboot: reboot, core: core, task: task}
}

// Guard runs fn, capturing and translating any panic into a fault record
// exactly once. It returns normally if fn does not panic.
func (h *Handler) Guard(fn func()) {
	defer func() {
		if recover() != nil {
			h.capture()
		}
	}()
	fn()
}

func (h *Handler) capture() {
	Capture(h.store, nvram.SentinelFault, Frame{Core: h.core, Task: h.task}, h.reboot)
}
