package fault

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/embeddedkit/m0core/nvram"
)

func TestPack_ReferenceVector(t *testing.T) {
	f := Frame{PC: 0x20001234, LR: 0x10001230, XPSR: 0x61000000, Core: 1, Task: 7}
	assert.Equal(t, uint32(0x61001007), Pack(f))
}

func TestCapture_WritesScratchInOrderAndReboots(t *testing.T) {
	store := nvram.NewRegisters()
	rebooted := false
	f := Frame{PC: 0x20001234, LR: 0x10001230, XPSR: 0x61000000, Core: 1, Task: 7}

	Capture(store, nvram.SentinelFault, f, func() { rebooted = true })

	words := store.Load()
	assert.Equal(t, nvram.SentinelFault, words[0])
	assert.Equal(t, uint32(0x20001234), words[1])
	assert.Equal(t, uint32(0x10001230), words[2])
	assert.Equal(t, uint32(0x61001007), words[3])
	assert.True(t, rebooted)
}

func TestCaptureStackOverflow_UsesStackOverflowSentinel(t *testing.T) {
	store := nvram.NewRegisters()
	CaptureStackOverflow(store, Frame{PC: 1, LR: 2}, func() {})
	assert.Equal(t, nvram.SentinelStackOverflow, store.Load()[0])
}

func TestCaptureAllocFailure_Layout(t *testing.T) {
	store := nvram.NewRegisters()
	CaptureAllocFailure(store, 4096, 1, func() {})

	words := store.Load()
	assert.Equal(t, nvram.SentinelAllocFail, words[0])
	assert.Equal(t, uint32(4096), words[1])
	assert.Equal(t, uint32(0), words[2])
	assert.Equal(t, uint32(1<<12), words[3])
}

type recordingStore struct {
	loaded [nvram.NumRegisters]uint32
	stores [][nvram.NumRegisters]uint32
}

func (s *recordingStore) Load() [nvram.NumRegisters]uint32 { return s.loaded }
func (s *recordingStore) Store(w [nvram.NumRegisters]uint32) {
	s.stores = append(s.stores, w)
	s.loaded = w
}
func (s *recordingStore) ClearSentinel() { s.loaded[0] = 0 }

func TestCapture_FallbackPathForNonRegistersStore(t *testing.T) {
	store := &recordingStore{}
	Capture(store, nvram.SentinelFault, Frame{PC: 1, LR: 2}, func() {})

	require := assert.New(t)
	require.Equal(nvram.SentinelFault, store.loaded[0])
	require.Equal(uint32(1), store.loaded[1])
	require.Equal(uint32(2), store.loaded[2])
	// sentinel must be the last word written, per the ordering guarantee.
	last := store.stores[len(store.stores)-1]
	require.Equal(nvram.SentinelFault, last[0])
}

func TestHandler_GuardRecoversAndCaptures(t *testing.T) {
	store := nvram.NewRegisters()
	rebooted := false
	h := NewHandler(store, 0, 3, func() { rebooted = true })

	assert.NotPanics(t, func() {
		h.Guard(func() {
			panic("simulated hard fault")
		})
	})

	assert.Equal(t, nvram.SentinelFault, store.Load()[0])
	assert.True(t, rebooted)
}

func TestHandler_GuardDoesNothingWithoutPanic(t *testing.T) {
	store := nvram.NewRegisters()
	rebooted := false
	h := NewHandler(store, 0, 0, func() { rebooted = true })

	h.Guard(func() {})

	assert.Equal(t, nvram.SentinelNone, store.Load()[0])
	assert.False(t, rebooted)
}
