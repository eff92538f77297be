// Package fault implements C4, Fault Capture: translating a hard-fault (or
// stack-overflow, or allocation-failure) exception into the four scratch
// words nvram persists across the ensuing watchdog reset. Every function in
// this package must be safe to run with a corrupted stack pointer and a
// disabled allocator (spec §4.4: "no heap allocation, no locks, the minimum
// instructions necessary"); it deliberately never touches `ambient` or any
// other component that might allocate or block.
package fault

import "github.com/embeddedkit/m0core/nvram"

// Frame is the minimal exception context C4 needs, populated by the CPU
// exception entry shim (arch-specific, see entry_arm.go) or, on the host,
// by Handler's recover() path.
type Frame struct {
	PC   uint32
	LR   uint32
	XPSR uint32
	Core int
	Task int
}

// Pack computes the fault record's scratch[3] word per spec §3/§8 item 7:
//
//	scratch[3] = (xpsr & 0xFFFF0000) | ((core & 0xF) << 12) | (task & 0xFFF)
//
// Reference vector (spec §8): pc=0x20001234, lr=0x10001230, xpsr=0x61000000,
// core=1, task=7 -> scratch[3] = 0x61001007.
func Pack(f Frame) uint32 {
	return (f.XPSR & 0xFFFF0000) | (uint32(f.Core&0xF) << 12) | (uint32(f.Task) & 0xFFF)
}

// Capture records a hard fault (or stack overflow, which uses the same
// scratch layout per spec §4.4) as scratch[1]=pc, scratch[2]=lr,
// scratch[3]=Pack(f), scratch[0]=sentinel written last, then forces a
// reboot via reboot. It never returns in production: the real handler
// cannot safely unwind back into whatever state caused the fault.
//
// reboot is injected so tests can observe the call instead of actually
// terminating the process; production wiring passes hw.Reboot.
func Capture(store nvram.Store, sentinel uint32, f Frame, reboot func()) {
	writeThenReboot(store, sentinel, f.PC, f.LR, Pack(f), reboot)
}

// CaptureStackOverflow shares Capture's pc/lr/pack layout with its own
// sentinel (spec §4.4: "Parallel stack-overflow ... hooks write their own
// sentinel and context using the same scratch layout policy").
func CaptureStackOverflow(store nvram.Store, f Frame, reboot func()) {
	Capture(store, nvram.SentinelStackOverflow, f, reboot)
}

// CaptureAllocFailure records scratch[1]=freeHeapAtFailure,
// scratch[3]=core_id<<12 (spec §3's alloc-fail layout line; scratch[2] is
// unused by this sentinel and left zero), scratch[0]=sentinel last.
func CaptureAllocFailure(store nvram.Store, freeHeapAtFailure uint32, coreID int, reboot func()) {
	scratch3 := uint32(coreID&0xF) << 12
	writeThenReboot(store, nvram.SentinelAllocFail, freeHeapAtFailure, 0, scratch3, reboot)
}

func writeThenReboot(store nvram.Store, sentinel, w1, w2, w3 uint32, reboot func()) {
	if r, ok := store.(*nvram.Registers); ok {
		r.StoreFault(sentinel, w1, w2, w3)
	} else {
		// fallback for a Store implementation that isn't *Registers (e.g. a
		// test double); still honors the "scratch[0] last" gate.
		store.Store([nvram.NumRegisters]uint32{0, w1, w2, w3})
		words := store.Load()
		words[0] = sentinel
		store.Store(words)
	}
	reboot()
}
