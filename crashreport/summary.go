package crashreport

import (
	"strconv"

	"github.com/embeddedkit/m0core/nvram"
)

// Summary renders a fixed-format, single-line human-readable report for
// channel 0 (spec §4.5: "emits a fixed-format summary to stdio").
func Summary(r Record) string {
	switch r.Sentinel {
	case nvram.SentinelFault:
		return "CRASH fault pc=0x" + hex32(r.PC) + " lr=0x" + hex32(r.LR) +
			" core=" + strconv.Itoa(int(r.CoreID)) + " task=" + strconv.Itoa(int(r.Task))
	case nvram.SentinelStackOverflow:
		return "CRASH stack-overflow pc=0x" + hex32(r.PC) + " lr=0x" + hex32(r.LR) +
			" core=" + strconv.Itoa(int(r.CoreID)) + " task=" + strconv.Itoa(int(r.Task))
	case nvram.SentinelAllocFail:
		return "CRASH alloc-fail free_heap=" + strconv.Itoa(int(r.FreeHeapAtFailure)) +
			" core=" + strconv.Itoa(int(r.CoreID))
	case nvram.SentinelWatchdogTimeout:
		return "CRASH watchdog-timeout missing=0x" + hex32(r.MissingBits) +
			" tick=" + strconv.Itoa(int(r.TickCount)) +
			" registered=0x" + hex32(r.RegisteredBits)
	default:
		return "CRASH unknown sentinel=0x" + hex32(r.Sentinel)
	}
}

func hex32(v uint32) string {
	return strconv.FormatUint(uint64(v), 16)
}
