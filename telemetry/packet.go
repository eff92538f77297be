// Package telemetry implements C3, the Telemetry Supervisor: a periodic
// vitals sample of every task's CPU share, encoded into the fixed-layout
// packet spec §3 defines and written to the Vitals channel.
package telemetry

import "encoding/binary"

// MaxTasks caps a single packet at 16 task entries (spec §3: "N <= 16").
const MaxTasks = 16

// PacketType identifies a telemetry packet on the wire (spec §3:
// "packet_type: u8 = 1").
const PacketType uint8 = 1

// HeaderSize is the fixed portion of a telemetry packet: packet_type(1) +
// timestamp_ticks(4) + free_heap(4) + min_free_heap(4) + task_count(1) = 14
// bytes (spec §3).
const HeaderSize = 14

// EntrySize is the per-task portion: task_number(1) + state(1) +
// priority(1) + stack_hwm(2) + cpu_pct(1) + runtime_ms(2) = 8 bytes
// (spec §3).
const EntrySize = 8

// MaxPacketSize is the worst case, 16 tasks: HeaderSize + 16*EntrySize.
const MaxPacketSize = HeaderSize + MaxTasks*EntrySize

// Entry is one task's vitals sample.
type Entry struct {
	TaskNumber uint8
	State      uint8
	Priority   uint8
	StackHWM   uint16 // words
	CPUPercent uint8  // 0..100, delta-based
	RuntimeMS  uint16 // truncated
}

// Packet is a fully decoded telemetry sample.
type Packet struct {
	TimestampTicks uint32
	FreeHeap       uint32
	MinFreeHeap    uint32
	Tasks          []Entry
}

// Encode appends the wire form of pkt to dst, clamping to MaxTasks entries
// exactly like C2's packet encoder clamps argc (spec §3 caps N at 16; a
// sample with more live tasks truncates rather than splitting across
// packets, matching the fixed non-fragmenting packet contract C1/C2 share).
func Encode(dst []byte, pkt Packet) []byte {
	tasks := pkt.Tasks
	if len(tasks) > MaxTasks {
		tasks = tasks[:MaxTasks]
	}

	var hdr [HeaderSize]byte
	hdr[0] = PacketType
	binary.LittleEndian.PutUint32(hdr[1:5], pkt.TimestampTicks)
	binary.LittleEndian.PutUint32(hdr[5:9], pkt.FreeHeap)
	binary.LittleEndian.PutUint32(hdr[9:13], pkt.MinFreeHeap)
	hdr[13] = uint8(len(tasks))
	dst = append(dst, hdr[:]...)

	for _, e := range tasks {
		var buf [EntrySize]byte
		buf[0] = e.TaskNumber
		buf[1] = e.State
		buf[2] = e.Priority
		binary.LittleEndian.PutUint16(buf[3:5], e.StackHWM)
		buf[5] = e.CPUPercent
		binary.LittleEndian.PutUint16(buf[6:8], e.RuntimeMS)
		dst = append(dst, buf[:]...)
	}
	return dst
}

// Decode parses a telemetry packet written by Encode. It exists only for
// the host-side test harness; production
// firmware never decodes its own telemetry stream (spec §1 Non-goals: no
// host-side decoder in scope beyond internal test support).
func Decode(src []byte) (pkt Packet, consumed int, err error) {
	if len(src) < HeaderSize {
		return Packet{}, 0, ErrTruncated
	}
	if src[0] != PacketType {
		return Packet{}, 0, ErrBadMagic
	}
	count := int(src[13])
	need := HeaderSize + count*EntrySize
	if len(src) < need {
		return Packet{}, 0, ErrTruncated
	}

	pkt.TimestampTicks = binary.LittleEndian.Uint32(src[1:5])
	pkt.FreeHeap = binary.LittleEndian.Uint32(src[5:9])
	pkt.MinFreeHeap = binary.LittleEndian.Uint32(src[9:13])
	pkt.Tasks = make([]Entry, count)
	for i := 0; i < count; i++ {
		off := HeaderSize + i*EntrySize
		e := src[off : off+EntrySize]
		pkt.Tasks[i] = Entry{
			TaskNumber: e[0],
			State:      e[1],
			Priority:   e[2],
			StackHWM:   binary.LittleEndian.Uint16(e[3:5]),
			CPUPercent: e[5],
			RuntimeMS:  binary.LittleEndian.Uint16(e[6:8]),
		}
	}
	return pkt, need, nil
}
