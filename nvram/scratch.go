// Package nvram implements the scratch-register contract of spec §3/§6: four
// 32-bit words that survive a watchdog-induced reset, written once by C4 on
// crash and read-and-cleared once by C5 on the following boot. Indices 0-3
// belong to this core; 4-7 are reserved by the boot ROM and this package
// refuses to touch them.
package nvram

import "sync/atomic"

// NumRegisters is the number of scratch words this core owns (spec §3:
// "Scratch indices 0..3 are reserved for this core").
const NumRegisters = 4

// Sentinel values for scratch[0] (spec §3).
const (
	SentinelNone            uint32 = 0
	SentinelFault           uint32 = 0xDEADFA11
	SentinelStackOverflow   uint32 = 0xDEAD57AC
	SentinelAllocFail       uint32 = 0xDEADBAD0
	SentinelWatchdogTimeout uint32 = 0xDEADB10C
)

// Store is the interface C4 (writer) and C5 (reader/clearer) share. It is
// implemented by *Registers, which can be backed onto real non-volatile
// scratch registers in a production build, or kept as a plain in-memory
// array across repeated boot.Sequence calls within one test process to model
// "survives a watchdog reset" without an actual reboot.
type Store interface {
	// Load reads all four registers.
	Load() [NumRegisters]uint32
	// Store writes all four registers. Used only by C4's fault path and by
	// tests; production C4 code uses the narrower StoreFault* helpers below
	// to avoid accidentally touching an unrelated field mid-write.
	Store(words [NumRegisters]uint32)
	// ClearSentinel zeroes scratch[0], the idempotence gate spec §3/§4.5
	// describe ("clearing scratch[0] is the single source of truth for
	// 'handled'").
	ClearSentinel()
}

// Registers is the in-process Store implementation. Each word is a
// separate atomic so a concurrent Load during a Store can't observe a
// half-written value word-by-word (the fault path is the only writer and
// writes all four before anything reads scratch[0], see StoreFault).
type Registers struct {
	words [NumRegisters]atomic.Uint32
}

// NewRegisters constructs a zeroed (SentinelNone) register file.
func NewRegisters() *Registers {
	return &Registers{}
}

func (r *Registers) Load() [NumRegisters]uint32 {
	var out [NumRegisters]uint32
	for i := range out {
		out[i] = r.words[i].Load()
	}
	return out
}

func (r *Registers) Store(words [NumRegisters]uint32) {
	for i := range words {
		r.words[i].Store(words[i])
	}
}

func (r *Registers) ClearSentinel() {
	r.words[0].Store(SentinelNone)
}

// StoreFault writes scratch[1..3] first and scratch[0] (the sentinel) last,
// matching spec §3's invariant: "Magic sentinel is written last in the
// fault path semantics ... is the gate for readers." A reader that observes
// a non-zero scratch[0] is guaranteed the other three words are already
// valid.
func (r *Registers) StoreFault(sentinel, w1, w2, w3 uint32) {
	r.words[1].Store(w1)
	r.words[2].Store(w2)
	r.words[3].Store(w3)
	r.words[0].Store(sentinel)
}
