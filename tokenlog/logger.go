package tokenlog

import "github.com/embeddedkit/m0core/ambient"

// Writer is the narrow dependency tokenlog has on package channel: append
// one packet, non-blocking, reporting whether it was accepted. It is
// satisfied by channel.Bound (what channel.Driver.Channel returns), kept as
// an interface here (rather than
// importing package channel) the same way logiface.Writer[E] decouples the
// logging frontend from any one backend.
type Writer interface {
	Write(p []byte) (n int, ok bool)
}

// buildHandshakeFormat is the literal logged once by Init, serving as the
// build-identity handshake (spec §6): "the host decoder can refuse
// mismatched token tables" by checking this is the first event it sees.
const buildHandshakeFormat = "build id = %d"

// Logger is the C2 Tokenized Logger: it converts a level + format literal +
// tagged args into a binary packet and hands it to a Writer.
type Logger struct {
	w        Writer
	minLevel Level
	amb      ambient.Logger

	// dropped counts packets rejected by the writer (channel full), used by
	// tests verifying spec §8 S4's "drop count is non-negative and
	// monotonic."
	dropped uint64
}

// NewLogger constructs a Logger gated at minLevel: levels numerically
// greater than minLevel compile (at this layer, runtime-filter) to a no-op,
// per spec §4.2 step 1.
func NewLogger(w Writer, minLevel Level, amb ambient.Logger) *Logger {
	return &Logger{w: w, minLevel: minLevel, amb: amb.With("tokenlog")}
}

// Init emits the build-identity handshake as the first Info-level event,
// per spec §6's "Build identity" contract and testable property S6.
func (l *Logger) Init(buildID uint32) {
	l.Log(LevelInfo, buildHandshakeFormat, Int(int32(buildID)))
}

// Log encodes format+args per spec §4.2 and writes the packet via the
// configured Writer. written is 0 and ok is false if the level is filtered
// or the channel had no room (spec §7 BufferFull: dropped, not surfaced as
// an error to the caller).
func (l *Logger) Log(level Level, format string, args ...Arg) (written int, ok bool) {
	if level > l.minLevel {
		return 0, false
	}

	var scratch [MaxPacketSize]byte
	buf := Encode(scratch[:0], Token(format), level, args)

	n, ok := l.w.Write(buf)
	if !ok {
		l.dropped++
	}
	return n, ok
}

// Log0 is the zero-argument fast path (spec §4.2): it skips allocating an
// args slice entirely.
func (l *Logger) Log0(level Level, format string) (written int, ok bool) {
	return l.Log(level, format)
}

// Dropped returns the number of packets this logger has had rejected by its
// Writer since construction.
func (l *Logger) Dropped() uint64 {
	return l.dropped
}
