package telemetry

import "errors"

// ErrTruncated is returned by Decode when src does not hold a full packet.
var ErrTruncated = errors.New("telemetry: truncated packet")

// ErrBadMagic is returned by Decode when src does not start with PacketType.
var ErrBadMagic = errors.New("telemetry: bad packet type")
