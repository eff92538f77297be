package ring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestByteChannel_WriteDrain(t *testing.T) {
	c := NewByteChannel(8)
	require.Equal(t, 8, c.Cap())

	n, ok := c.Write([]byte{1, 2, 3})
	require.True(t, ok)
	require.Equal(t, 3, n)

	n, ok = c.Write([]byte{4, 5, 6})
	require.True(t, ok)
	require.Equal(t, 3, n)

	// 6 bytes used, 2 free: a 3-byte packet must be dropped whole, not
	// partially written.
	n, ok = c.Write([]byte{7, 8, 9})
	assert.False(t, ok)
	assert.Equal(t, 0, n)

	got := c.Drain()
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6}, got)
	assert.Equal(t, 0, c.Len())
}

func TestByteChannel_WraparoundIsAtomic(t *testing.T) {
	c := NewByteChannel(4)

	_, ok := c.Write([]byte{1, 2, 3})
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, c.Drain())

	// write cursor is now at 3, past the midpoint; this write wraps.
	_, ok = c.Write([]byte{4, 5, 6})
	require.True(t, ok)
	assert.Equal(t, []byte{4, 5, 6}, c.Drain())
}

func TestByteChannel_OversizeNeverFits(t *testing.T) {
	c := NewByteChannel(4)
	_, ok := c.Write([]byte{1, 2, 3, 4, 5})
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}
