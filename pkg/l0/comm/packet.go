package comm

import (
	"encoding/binary"
	"io"
	"time"
)

// PacketSeq is a packet sequence number, valid in 1..0xef.
type PacketSeq byte

// NewPacketSeq creates a random initial sequence number.
func NewPacketSeq() PacketSeq {
	return PacketSeq(byte(time.Now().UnixNano())).Next()
}

// Next calculates the next sequence number.
func (s PacketSeq) Next() PacketSeq {
	n := byte(s) + 1
	if n == 0 || n >= 0xf0 {
		n = 1
	}
	return PacketSeq(n)
}

// IsValid checks if it's a valid sequence number.
func (s PacketSeq) IsValid() bool {
	n := byte(s)
	return n > 0 && n < 0xf0
}

// MaxDataLen is the largest payload a packet carries. It keeps the
// two-byte extended length distinguishable from sync bytes and bounds
// allocation on the receive side.
const MaxDataLen = 0x3fff

// Packet is one framed unit on the link. Code bit 7 marks events sent by
// the firmware on its own; the remaining low 4 bits are the operation
// code. Bits 4..6 of the code byte carry the length on the wire:
// 0..5 is the payload length itself, 6 prefixes a 1-byte length and
// 7 prefixes a 2-byte little-endian length.
type Packet struct {
	Seq  PacketSeq
	Code byte
	Data []byte
}

const (
	lenExt8  = 6
	lenExt16 = 7
)

// Bytes returns encoded bytes for sending.
func (p *Packet) Bytes() []byte {
	b := make([]byte, 0, len(p.Data)+5)
	b = append(b, byte(p.Seq))
	switch l := len(p.Data); {
	case l <= 5:
		b = append(b, (p.Code&0x8f)|byte(l)<<4)
	case l < 0x80:
		b = append(b, (p.Code&0x8f)|lenExt8<<4, byte(l))
	default:
		b = append(b, (p.Code&0x8f)|lenExt16<<4, byte(l), byte(l>>8))
	}
	return append(b, p.Data...)
}

// WriteTo writes encoded bytes.
func (p *Packet) WriteTo(w io.Writer) (n int, err error) {
	if len(p.Data) > MaxDataLen {
		return 0, ErrPacketTooLarge
	}
	return w.Write(p.Bytes())
}

// Intervals decodes the payload as little-endian 32-bit interval words,
// skipping the leading header bytes.
func (p *Packet) Intervals(skip int) []uint32 {
	data := p.Data
	if skip >= len(data) {
		return nil
	}
	data = data[skip:]
	intervals := make([]uint32, len(data)/4)
	for i := range intervals {
		intervals[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return intervals
}

// PutIntervals appends interval words to a payload in little-endian.
func PutIntervals(data []byte, intervals []uint32) []byte {
	for _, iv := range intervals {
		data = binary.LittleEndian.AppendUint32(data, iv)
	}
	return data
}
