package tokenlog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncode_PacketShape(t *testing.T) {
	buf := Encode(nil, Token("hello %d"), LevelWarn, []Arg{Int(42), Float(1.5)})

	require.Len(t, buf, 5+1+4) // token(4) + levelArgc(1) + varint(1 byte for 42, zigzag=84<128) + float(4)

	gotTok := uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
	assert.Equal(t, Token("hello %d"), gotTok)

	levelArgc := buf[4]
	assert.Equal(t, byte(LevelWarn), levelArgc>>4)
	assert.Equal(t, byte(2), levelArgc&0x0f)
}

func TestEncode_ClampsOversizeArgs(t *testing.T) {
	args := make([]Arg, 20)
	for i := range args {
		args[i] = Int(int32(i))
	}
	buf := Encode(nil, Token("x"), LevelError, args)
	assert.Equal(t, byte(MaxArgs), buf[4]&0x0f)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	args := []Arg{Int(-7), Float(3.25), Int(1 << 20)}
	buf := Encode(nil, Token("mixed"), LevelDebug, args)

	pkt, n, err := Decode(buf, []ArgKind{KindInt32, KindFloat32, KindInt32})
	require.NoError(t, err)
	assert.Equal(t, len(buf), n)
	assert.Equal(t, Token("mixed"), pkt.Token)
	assert.Equal(t, LevelDebug, pkt.Level)
	require.Len(t, pkt.Args, 3)
	assert.Equal(t, int32(-7), pkt.Args[0].Int)
	assert.InDelta(t, float32(3.25), pkt.Args[1].Float, 0.0001)
	assert.Equal(t, int32(1<<20), pkt.Args[2].Int)
}

func TestEncode_ZeroArgFastPath(t *testing.T) {
	buf := Encode(nil, Token("boot"), LevelInfo, nil)
	assert.Len(t, buf, 5)
	assert.Equal(t, byte(0), buf[4]&0x0f)
}
