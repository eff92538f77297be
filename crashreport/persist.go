package crashreport

import (
	"github.com/joeycumines/go-utilpkg/jsonenc"
)

// CrashPath is the single well-known path the crash record always
// overwrites (spec §3: "overwrites any prior record at a single well-known
// path").
const CrashPath = "/crash/latest.json"

// AppendJSON hand-appends r's JSON representation to dst using jsonenc's
// allocation-avoiding string/float encoders, matching spec §4.5's "static
// per-file buffer, no dynamic allocation" requirement and the teacher's
// hand-rolled-JSON-event style (logiface-stumpy). The persisted key set
// always includes spec §6's mandated fields (magic, pc, lr, xpsr, core_id,
// task_number, version); sentinel-specific extra fields are appended
// afterward so a reader that only knows the spec's baseline schema can
// still parse the document. Per spec §6, 32-bit hex values (magic, pc, lr,
// xpsr, and the bitmask-shaped missing_bits/registered_bits) are written as
// hex strings; small ints (core_id, task_number, version, tick_count,
// free_heap_at_failure) are written as JSON numbers.
func AppendJSON(dst []byte, r Record) []byte {
	dst = append(dst, '{')
	dst = appendKey(dst, "magic", true)
	dst = appendHex32(dst, r.Sentinel)
	dst = append(dst, ',')
	dst = appendKey(dst, "pc", true)
	dst = appendHex32(dst, r.PC)
	dst = append(dst, ',')
	dst = appendKey(dst, "lr", true)
	dst = appendHex32(dst, r.LR)
	dst = append(dst, ',')
	dst = appendKey(dst, "xpsr", true)
	dst = appendHex32(dst, r.XPSR)
	dst = append(dst, ',')
	dst = appendKey(dst, "core_id", true)
	dst = appendUint(dst, uint64(r.CoreID))
	dst = append(dst, ',')
	dst = appendKey(dst, "task_number", true)
	dst = appendUint(dst, uint64(r.Task))
	dst = append(dst, ',')
	dst = appendKey(dst, "version", true)
	dst = appendUint(dst, uint64(Version))

	switch {
	case r.MissingBits != 0 || r.TickCount != 0 || r.RegisteredBits != 0:
		dst = append(dst, ',')
		dst = appendKey(dst, "missing_bits", true)
		dst = appendHex32(dst, r.MissingBits)
		dst = append(dst, ',')
		dst = appendKey(dst, "tick_count", true)
		dst = appendUint(dst, uint64(r.TickCount))
		dst = append(dst, ',')
		dst = appendKey(dst, "registered_bits", true)
		dst = appendHex32(dst, r.RegisteredBits)
	case r.FreeHeapAtFailure != 0:
		dst = append(dst, ',')
		dst = appendKey(dst, "free_heap_at_failure", true)
		dst = appendUint(dst, uint64(r.FreeHeapAtFailure))
	}

	return append(dst, '}')
}

func appendKey(dst []byte, key string, hasValue bool) []byte {
	dst = jsonenc.AppendString(dst, key)
	if hasValue {
		dst = append(dst, ':')
	}
	return dst
}

func appendUint(dst []byte, v uint64) []byte {
	return jsonenc.AppendFloat64(dst, float64(v))
}

const hexDigits = "0123456789abcdef"

// appendHex32 appends v as a quoted "0x"-prefixed, zero-padded 8-digit hex
// string (spec §6: "strings for 32-bit hex values").
func appendHex32(dst []byte, v uint32) []byte {
	var buf [10]byte
	buf[0], buf[1] = '0', 'x'
	for i := 0; i < 8; i++ {
		shift := uint(28 - 4*i)
		buf[2+i] = hexDigits[(v>>shift)&0xF]
	}
	return jsonenc.AppendString(dst, string(buf[:]))
}
