//go:build arm

package fault

import "github.com/embeddedkit/m0core/nvram"

// CaptureFromException is the production Cortex-M0+ fault entry point. It
// is invoked directly from the vector table's HardFault handler, written in
// assembly (not present in this module; see the toolchain collaborator
// contract, spec §6), which extracts pc, lr and xpsr from the exception
// stack frame before calling into Go. store and reboot are wired once at
// boot and held in package-level statics rather than passed through the
// vector table, since the assembly shim cannot construct a Go interface
// value.
var (
	armStore  interface {
		StoreFault(sentinel, w1, w2, w3 uint32)
	}
	armReboot func()
	armCore   int
)

// BindException wires the scratch store and reboot primitive the assembly
// shim's Go-level trampoline uses; called once during boot, before
// interrupts are unmasked.
func BindException(store interface {
	StoreFault(sentinel, w1, w2, w3 uint32)
}, reboot func(), core int) {
	armStore = store
	armReboot = reboot
	armCore = core
}

// CaptureFromException is called by the assembly trampoline with the raw
// exception frame fields and the currently-running task number. It performs
// no allocation and takes no lock, matching spec §4.4.
func CaptureFromException(pc, lr, xpsr uint32, task int) {
	f := Frame{PC: pc, LR: lr, XPSR: xpsr, Core: armCore, Task: task}
	armStore.StoreFault(nvram.SentinelFault, pc, lr, Pack(f))
	armReboot()
}
