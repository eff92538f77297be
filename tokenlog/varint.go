package tokenlog

// ZigZag maps a signed 32-bit integer to an unsigned 32-bit integer so that
// small-magnitude values (positive or negative) encode to small varints.
// Per spec §3/§4.2: n<<1 ^ n>>31.
func ZigZag(n int32) uint32 {
	return uint32(n<<1) ^ uint32(n>>31)
}

// UnZigZag is ZigZag's inverse.
func UnZigZag(u uint32) int32 {
	return int32(u>>1) ^ -int32(u&1)
}

// AppendVarint appends u as a base-128 varint (LSB first, MSB-continuation
// bit) to dst, returning the extended slice. Encodes in 1-5 bytes.
func AppendVarint(dst []byte, u uint32) []byte {
	for u >= 0x80 {
		dst = append(dst, byte(u)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

// DecodeVarint reads a base-128 varint from the front of src, returning the
// decoded value and the number of bytes consumed (0 if src is exhausted
// before a terminating byte is seen).
func DecodeVarint(src []byte) (value uint32, n int) {
	var shift uint
	for n < len(src) && n < 5 {
		b := src[n]
		value |= uint32(b&0x7f) << shift
		n++
		if b&0x80 == 0 {
			return value, n
		}
		shift += 7
	}
	return 0, 0
}
