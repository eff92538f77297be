package ring

import "sync"

// ByteChannel is a single-producer, single-consumer byte ring buffer backing
// one up-channel (package channel). Producers call Write under whatever
// critical region the caller provides (package channel's CriticalRegion);
// ByteChannel's own mutex only protects against the consumer's concurrent
// Drain, mirroring catrate.Limiter's split between a coarse Limiter.mu (here:
// the caller's critical region) and the fine-grained per-bucket mutex (here:
// mu).
//
// Write is strictly non-blocking and atomic per packet: if the full payload
// doesn't fit in the remaining free space, nothing is written and ok is
// false. Partial writes never occur.
type ByteChannel struct {
	mu   sync.Mutex
	buf  []byte
	r, w uint
}

// NewByteChannel allocates a channel with the given capacity, rounded up to
// the next power of 2 so index masking stays cheap, matching the sizing
// discipline of catrate's ring buffer.
func NewByteChannel(capacity int) *ByteChannel {
	if capacity <= 0 {
		panic(`ring: byte channel capacity must be positive`)
	}
	size := 1
	for size < capacity {
		size <<= 1
	}
	return &ByteChannel{buf: make([]byte, size)}
}

func (c *ByteChannel) mask(v uint) uint {
	return v & (uint(len(c.buf)) - 1)
}

// Cap returns the channel's fixed byte capacity.
func (c *ByteChannel) Cap() int {
	return len(c.buf)
}

// Len returns the number of unread bytes currently buffered.
func (c *ByteChannel) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return int(c.w - c.r)
}

// Write appends p atomically. ok is false (and nothing is written) if p
// doesn't fit in the remaining free space, or if p is larger than the
// channel's total capacity.
func (c *ByteChannel) Write(p []byte) (n int, ok bool) {
	if len(p) == 0 {
		return 0, true
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	free := len(c.buf) - int(c.w-c.r)
	if len(p) > free {
		return 0, false
	}

	start := c.mask(c.w)
	n = copy(c.buf[start:], p)
	copy(c.buf[:len(p)-n], p[n:])
	c.w += uint(len(p))
	return len(p), true
}

// Drain copies out and discards every unread byte, simulating the
// out-of-band debug-probe read described in spec §4.1/§6: the host reads
// passively and this is the only way bytes leave the channel.
func (c *ByteChannel) Drain() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int(c.w - c.r)
	if n == 0 {
		return nil
	}
	out := make([]byte, n)
	start := c.mask(c.r)
	k := copy(out, c.buf[start:])
	copy(out[k:], c.buf[:n-k])
	c.r = c.w
	return out
}
