package h2

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/net/http2/hpack"
)

// PriorityParam is the 5-octet priority block of PRIORITY frames and of
// HEADERS frames carrying the PRIORITY flag.
type PriorityParam struct {
	Exclusive        bool
	StreamDependency uint32

	// Weight is the raw wire octet 0-255; the effective weight is this
	// value plus one (RFC 7540 section 5.3.2).
	Weight uint8
}

const priorityBlockLen = 5

func parsePriorityParam(buf []byte) PriorityParam {
	word := binary.BigEndian.Uint32(buf[0:4])
	return PriorityParam{
		Exclusive:        word&0x80000000 != 0,
		StreamDependency: word & 0x7fffffff,
		Weight:           buf[4],
	}
}

func (p PriorityParam) appendTo(buf []byte) []byte {
	word := p.StreamDependency & 0x7fffffff
	if p.Exclusive {
		word |= 0x80000000
	}
	return append(buf, byte(word>>24), byte(word>>16), byte(word>>8), byte(word), p.Weight)
}

// HeadersFrame (type=0x1) opens a stream and carries a header block
// fragment, optionally with padding and a priority block.
type HeadersFrame struct {
	FrameHeader

	PadLength uint8

	// Priority is meaningful only while the PRIORITY flag is set.
	Priority PriorityParam

	// HeaderList is the decoded header fields. On encode it is
	// re-compressed against the current HPACK state; if it is nil the
	// cached HeaderBlockFragment goes out as-is.
	HeaderList []hpack.HeaderField

	// HeaderBlockFragment is the raw compressed fragment as seen on the
	// wire, kept so a frame can be relayed without re-encoding.
	HeaderBlockFragment []byte
}

// NewHeadersFrame builds a HEADERS frame for streamID. The header list is
// compressed when the frame is written. A non-zero padLength also sets
// the PADDED flag.
func NewHeadersFrame(streamID uint32, headers []hpack.HeaderField, padLength uint8) *HeadersFrame {
	f := &HeadersFrame{
		FrameHeader: FrameHeader{Type: FrameHeaders, StreamID: streamID},
		HeaderList:  headers,
		PadLength:   padLength,
	}
	if padLength > 0 {
		f.SetPadded()
	}
	return f
}

// NewHeadersFrameWithPriority is NewHeadersFrame plus a priority block;
// it sets the PRIORITY flag.
func NewHeadersFrameWithPriority(streamID uint32, headers []hpack.HeaderField, prio PriorityParam, padLength uint8) *HeadersFrame {
	f := NewHeadersFrame(streamID, headers, padLength)
	f.Priority = prio
	f.SetPriority()
	return f
}

func (f *HeadersFrame) Header() *FrameHeader { return &f.FrameHeader }

func (f *HeadersFrame) HasEndStream() bool { return f.HasFlags(FlagEndStream) }
func (f *HeadersFrame) SetEndStream()      { f.SetFlags(FlagEndStream) }
func (f *HeadersFrame) ClearEndStream()    { f.ClearFlags(FlagEndStream) }

func (f *HeadersFrame) HasEndHeaders() bool { return f.HasFlags(FlagEndHeaders) }
func (f *HeadersFrame) SetEndHeaders()      { f.SetFlags(FlagEndHeaders) }
func (f *HeadersFrame) ClearEndHeaders()    { f.ClearFlags(FlagEndHeaders) }

func (f *HeadersFrame) HasPadded() bool { return f.HasFlags(FlagPadded) }
func (f *HeadersFrame) SetPadded()      { f.SetFlags(FlagPadded) }
func (f *HeadersFrame) ClearPadded()    { f.ClearFlags(FlagPadded) }

func (f *HeadersFrame) HasPriority() bool { return f.HasFlags(FlagPriority) }
func (f *HeadersFrame) SetPriority()      { f.SetFlags(FlagPriority) }
func (f *HeadersFrame) ClearPriority()    { f.ClearFlags(FlagPriority) }

func (f *HeadersFrame) decodePayload(payload []byte, tbl *HeaderTable) error {
	if err := f.checkStreamNonzero(); err != nil {
		return err
	}
	rest, padLength, err := splitPadding(&f.FrameHeader, payload)
	if err != nil {
		return err
	}
	f.PadLength = padLength
	if f.HasPriority() {
		if len(rest) < priorityBlockLen {
			return fmt.Errorf("%w: HEADERS priority block needs %d octets, have %d", ErrFrameSize, priorityBlockLen, len(rest))
		}
		f.Priority = parsePriorityParam(rest)
		rest = rest[priorityBlockLen:]
	}
	f.HeaderBlockFragment = rest
	f.HeaderList, err = tbl.Decode(rest, f.HasEndHeaders())
	return err
}

func (f *HeadersFrame) encodePayload(tbl *HeaderTable) ([]byte, error) {
	if f.HeaderList != nil {
		fragment, err := tbl.Encode(f.HeaderList)
		if err != nil {
			return nil, err
		}
		f.HeaderBlockFragment = fragment
	}
	var body []byte
	if f.HasPriority() {
		body = f.Priority.appendTo(body)
	}
	body = append(body, f.HeaderBlockFragment...)
	f.updateLength()
	return padPayload(&f.FrameHeader, f.PadLength, body), nil
}

func (f *HeadersFrame) updateLength() {
	n := len(f.HeaderBlockFragment)
	if f.HasPriority() {
		n += priorityBlockLen
	}
	if f.HasPadded() {
		n += 1 + int(f.PadLength)
	}
	f.Length = uint32(n)
}
