package tokenlog

import (
	"encoding/binary"
	"errors"
	"math"
)

// MaxArgs is the spec's compile-time cap on arguments per call
// (spec §4.2: "max 8 args"). Exceeding it is the OversizePacket condition
// (spec §7): the call silently truncates to MaxArgs rather than erroring.
const MaxArgs = 8

// MaxPacketSize is the largest a packet can be: 4 (token) + 1 (level/argc)
// + 8 args * 5 bytes (the widest varint encoding of a zig-zagged int32).
const MaxPacketSize = 4 + 1 + MaxArgs*5

// ArgKind distinguishes the two wire representations spec §3 allows for an
// argument. It is not carried on the wire (spec §4.2: "type is determined
// by source-side tagging at call site") — a decoder must already know, per
// token, which kind each argument position is, via the token database.
type ArgKind uint8

const (
	KindInt32 ArgKind = iota
	KindFloat32
)

// Arg is one tagged logging argument.
type Arg struct {
	Kind  ArgKind
	Int   int32
	Float float32
}

// Int builds a signed-int-32 argument.
func Int(v int32) Arg { return Arg{Kind: KindInt32, Int: v} }

// Float builds a float-32 argument.
func Float(v float32) Arg { return Arg{Kind: KindFloat32, Float: v} }

// Packet is a decoded log packet (spec §3).
type Packet struct {
	Token uint32
	Level Level
	Args  []Arg
}

var (
	// ErrTruncated indicates a buffer ended before a full packet could be
	// read.
	ErrTruncated = errors.New("tokenlog: truncated packet")
)

// Encode serializes a packet: [u32 token][u8 (level<<4)|argc][args...],
// appending to dst. Arguments beyond MaxArgs are silently dropped
// (spec §7 OversizePacket: "defensive clamp on arg count").
func Encode(dst []byte, token uint32, level Level, args []Arg) []byte {
	if len(args) > MaxArgs {
		args = args[:MaxArgs]
	}

	var tokBuf [4]byte
	binary.LittleEndian.PutUint32(tokBuf[:], token)
	dst = append(dst, tokBuf[:]...)
	dst = append(dst, byte(level)<<4|byte(len(args)))

	for _, a := range args {
		switch a.Kind {
		case KindInt32:
			dst = AppendVarint(dst, ZigZag(a.Int))
		case KindFloat32:
			var fb [4]byte
			binary.LittleEndian.PutUint32(fb[:], math.Float32bits(a.Float))
			dst = append(dst, fb[:]...)
		}
	}
	return dst
}

// Decode parses one packet from the front of src. kinds must supply, in
// order, the ArgKind of every argument the token is known (by the caller,
// via its token database) to carry; len(kinds) must equal the packet's
// argc or Decode returns an error, since the wire format carries no
// self-describing type tags (spec §4.2).
func Decode(src []byte, kinds []ArgKind) (pkt Packet, consumed int, err error) {
	if len(src) < 5 {
		return Packet{}, 0, ErrTruncated
	}
	pkt.Token = binary.LittleEndian.Uint32(src[0:4])
	levelArgc := src[4]
	pkt.Level = Level(levelArgc >> 4)
	argc := int(levelArgc & 0x0f)

	if len(kinds) != argc {
		return Packet{}, 0, errors.New("tokenlog: kinds length does not match packet argc")
	}

	off := 5
	pkt.Args = make([]Arg, 0, argc)
	for _, k := range kinds {
		switch k {
		case KindInt32:
			if off >= len(src) {
				return Packet{}, 0, ErrTruncated
			}
			u, n := DecodeVarint(src[off:])
			if n == 0 {
				return Packet{}, 0, ErrTruncated
			}
			pkt.Args = append(pkt.Args, Int(UnZigZag(u)))
			off += n
		case KindFloat32:
			if off+4 > len(src) {
				return Packet{}, 0, ErrTruncated
			}
			bits := binary.LittleEndian.Uint32(src[off : off+4])
			pkt.Args = append(pkt.Args, Float(math.Float32frombits(bits)))
			off += 4
		}
	}
	return pkt, off, nil
}
