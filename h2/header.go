package h2

import (
	"encoding/binary"
	"fmt"
)

// FrameHeader is the fixed 9-octet header every frame starts with.
type FrameHeader struct {
	// Length is the payload length in octets. It is recomputed from the
	// payload fields before every encode; after a decode it reflects what
	// was on the wire.
	Length uint32

	Type  FrameType
	Flags Flags

	// Reserved is the top bit of the stream identifier word. It is kept
	// on decode for diagnostics and written back out, but MUST stay false
	// unless the caller sets it on purpose.
	Reserved bool

	// StreamID is the 31-bit stream identifier. 0 for connection-level
	// frames, odd for client-initiated streams, even for server-initiated.
	StreamID uint32
}

// ParseFrameHeader reads the 9-octet header layout from buf.
func ParseFrameHeader(buf []byte) (FrameHeader, error) {
	if len(buf) < FrameHeaderLen {
		return FrameHeader{}, fmt.Errorf("%w: header needs %d bytes, have %d", ErrTruncated, FrameHeaderLen, len(buf))
	}
	word := binary.BigEndian.Uint32(buf[5:9])
	return FrameHeader{
		// length is 24-bit
		Length:   uint32(buf[0])<<16 | uint32(buf[1])<<8 | uint32(buf[2]),
		Type:     FrameType(buf[3]),
		Flags:    Flags(buf[4]),
		Reserved: word&0x80000000 != 0,
		StreamID: word & 0x7fffffff,
	}, nil
}

// appendTo serializes the header. The reserved bit is written from the
// record, so it stays 0 unless explicitly set.
func (h FrameHeader) appendTo(buf []byte) []byte {
	word := h.StreamID & 0x7fffffff
	if h.Reserved {
		word |= 0x80000000
	}
	return append(buf,
		byte(h.Length>>16), byte(h.Length>>8), byte(h.Length),
		byte(h.Type), byte(h.Flags),
		byte(word>>24), byte(word>>16), byte(word>>8), byte(word),
	)
}

// HasFlags reports whether every bit in flags is set. Prefer the per-frame
// accessors (HasEndStream, HasAck, ...) which cannot mix up bits shared
// between frame types.
func (h *FrameHeader) HasFlags(flags Flags) bool { return h.Flags&flags == flags }

// SetFlags sets the given flag bits.
func (h *FrameHeader) SetFlags(flags Flags) { h.Flags |= flags }

// ClearFlags clears the given flag bits.
func (h *FrameHeader) ClearFlags(flags Flags) { h.Flags &^= flags }

func (h FrameHeader) String() string {
	return fmt.Sprintf("[%s len=%d flags=0x%02x stream=%d]", h.Type, h.Length, uint8(h.Flags), h.StreamID)
}

// checkStreamZero rejects a connection-level frame sent on a stream.
func (h *FrameHeader) checkStreamZero() error {
	if h.StreamID != 0 {
		return fmt.Errorf("%w: %s frame on stream %d, must be stream 0", ErrProtocol, h.Type, h.StreamID)
	}
	return nil
}

// checkStreamNonzero rejects a stream-level frame sent on stream 0.
func (h *FrameHeader) checkStreamNonzero() error {
	if h.StreamID == 0 {
		return fmt.Errorf("%w: %s frame on stream 0", ErrProtocol, h.Type)
	}
	return nil
}
