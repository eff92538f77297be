package channel

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriver_NonBlockingDrop(t *testing.T) {
	d := NewDriver(16, 16)

	n, ok := d.Write(AiLog, make([]byte, 16))
	require.True(t, ok)
	require.Equal(t, 16, n)

	// buffer is full now; the whole next packet must be dropped, not
	// partially written.
	n, ok = d.Write(AiLog, []byte{1, 2, 3})
	assert.False(t, ok)
	assert.Equal(t, 0, n)
}

func TestDriver_ChannelsAreIndependent(t *testing.T) {
	d := NewDriver(64, 64)
	_, ok := d.Write(AiLog, []byte("log"))
	require.True(t, ok)
	_, ok = d.Write(Vitals, []byte("vitals"))
	require.True(t, ok)

	assert.Equal(t, []byte("log"), d.Drain(AiLog))
	assert.Equal(t, []byte("vitals"), d.Drain(Vitals))
}

// TestDriver_ConcurrentWritesNeverInterleave is spec §8 S4's core claim: no
// partial packet ever appears, even under two-core concurrent pressure.
func TestDriver_ConcurrentWritesNeverInterleave(t *testing.T) {
	d := NewDriver(4096, 64)

	const perCore = 5000
	mkPacket := func(core byte, i int) []byte {
		return []byte{core, byte(i), byte(i >> 8), byte(i >> 16), 0xAA}
	}

	var wg sync.WaitGroup
	for core := byte(0); core < 2; core++ {
		wg.Add(1)
		go func(core byte) {
			defer wg.Done()
			for i := 0; i < perCore; i++ {
				d.Write(AiLog, mkPacket(core, i))
			}
		}(core)
	}
	wg.Wait()

	got := d.Drain(AiLog)
	require.Zero(t, len(got)%5, "every packet is 5 bytes; a partial write would break this")
	for i := 0; i+5 <= len(got); i += 5 {
		assert.Equal(t, byte(0xAA), got[i+4], "packet framing must stay intact")
	}
}

func TestDriver_SchedulerStartedPredicate(t *testing.T) {
	d := NewDriver(64, 64)
	assert.False(t, d.SchedulerStarted())
	d.SetSchedulerStarted(true)
	assert.True(t, d.SchedulerStarted())
}

func TestChannelNames(t *testing.T) {
	assert.Equal(t, "Terminal", Name(Terminal))
	assert.Equal(t, "AiLog", Name(AiLog))
	assert.Equal(t, "Vitals", Name(Vitals))
	assert.LessOrEqual(t, len(Name(AiLog)), 8)
}
