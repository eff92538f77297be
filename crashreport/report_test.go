package crashreport

import (
	"fmt"
	"testing"

	diff "github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/stretchr/testify/assert"

	"github.com/embeddedkit/m0core/nvram"
)

// diffBody renders a unified diff between the expected and actual JSON
// bodies, the same failure-message style the teacher's logiface mock
// tests use for exact-body assertions.
func diffBody(expected, actual string) string {
	return fmt.Sprint(diff.ToUnified("expected", "actual", expected, myers.ComputeEdits("", expected, actual)))
}

func TestDecode_FaultLayout(t *testing.T) {
	scratch := [nvram.NumRegisters]uint32{nvram.SentinelFault, 0x20001234, 0x10001230, 0x61001007}
	r := Decode(scratch)
	assert.Equal(t, uint32(0x20001234), r.PC)
	assert.Equal(t, uint32(0x10001230), r.LR)
	assert.Equal(t, uint32(0x61000000), r.XPSR)
	assert.Equal(t, uint8(1), r.CoreID)
	assert.Equal(t, uint16(7), r.Task)
}

func TestDecode_WatchdogTimeoutLayout(t *testing.T) {
	scratch := [nvram.NumRegisters]uint32{nvram.SentinelWatchdogTimeout, 0x4, 12345, 0x7}
	r := Decode(scratch)
	assert.Equal(t, uint32(0x4), r.MissingBits)
	assert.Equal(t, uint32(12345), r.TickCount)
	assert.Equal(t, uint32(0x7), r.RegisteredBits)
}

func TestDecode_AllocFailLayout(t *testing.T) {
	scratch := [nvram.NumRegisters]uint32{nvram.SentinelAllocFail, 4096, 0, 1 << 12}
	r := Decode(scratch)
	assert.Equal(t, uint32(4096), r.FreeHeapAtFailure)
	assert.Equal(t, uint8(1), r.CoreID)
}

func TestAppendJSON_ExactBodyForFaultRecord(t *testing.T) {
	r := Record{Sentinel: nvram.SentinelFault, PC: 0x20001234, LR: 0x10001230, XPSR: 0x61000000, CoreID: 1, Task: 7}
	want := `{"magic":"0xdeadfa11","pc":"0x20001234","lr":"0x10001230","xpsr":"0x61000000","core_id":1,"task_number":7,"version":1}`
	got := string(AppendJSON(nil, r))
	if want != got {
		t.Errorf("body mismatch:\n%s", diffBody(want, got))
	}
}

func TestAppendJSON_ContainsMandatedKeys(t *testing.T) {
	r := Record{Sentinel: nvram.SentinelFault, PC: 1, LR: 2, XPSR: 3, CoreID: 1, Task: 7}
	doc := string(AppendJSON(nil, r))
	for _, key := range []string{`"magic"`, `"pc"`, `"lr"`, `"xpsr"`, `"core_id"`, `"task_number"`, `"version"`} {
		assert.Contains(t, doc, key)
	}
}
