package crashreport

import "github.com/embeddedkit/m0core/nvram"

// Record is the decoded crash record, with every field a sentinel type
// could populate. Only the fields relevant to Record.Sentinel are
// meaningful; the rest are zero.
type Record struct {
	Sentinel uint32

	// fault / stack-overflow layout
	PC, LR uint32
	XPSR   uint32
	CoreID uint8
	Task   uint16

	// watchdog-timeout layout
	MissingBits    uint32
	TickCount      uint32
	RegisteredBits uint32

	// alloc-failure layout
	FreeHeapAtFailure uint32
}

// Version is the crash record's on-disk schema version (spec §6's
// persisted "version" field).
const Version = 1

// Decode unpacks scratch per the layout its sentinel implies (spec §3's
// per-sentinel scratch layout table). The caller has already established
// scratch[0] matches a known sentinel.
func Decode(scratch [nvram.NumRegisters]uint32) Record {
	r := Record{Sentinel: scratch[0]}
	switch scratch[0] {
	case nvram.SentinelFault, nvram.SentinelStackOverflow:
		r.PC = scratch[1]
		r.LR = scratch[2]
		r.XPSR = scratch[3] & 0xFFFF0000
		r.CoreID = uint8((scratch[3] >> 12) & 0xF)
		r.Task = uint16(scratch[3] & 0xFFF)
	case nvram.SentinelWatchdogTimeout:
		r.MissingBits = scratch[1]
		r.TickCount = scratch[2]
		r.RegisteredBits = scratch[3]
	case nvram.SentinelAllocFail:
		r.FreeHeapAtFailure = scratch[1]
		r.CoreID = uint8((scratch[3] >> 12) & 0xF)
	}
	return r
}
