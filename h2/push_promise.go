package h2

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/net/http2/hpack"
)

// PushPromiseFrame (type=0x5) announces a stream the sender intends to
// open, with the request headers for it.
type PushPromiseFrame struct {
	FrameHeader

	PadLength uint8

	// PromisedStreamID is the 31-bit identifier of the stream being
	// reserved. The reserved bit in front of it is ignored on read and
	// sent as zero.
	PromisedStreamID uint32

	HeaderList          []hpack.HeaderField
	HeaderBlockFragment []byte
}

func NewPushPromiseFrame(streamID, promisedStreamID uint32, headers []hpack.HeaderField, padLength uint8) *PushPromiseFrame {
	f := &PushPromiseFrame{
		FrameHeader:      FrameHeader{Type: FramePushPromise, StreamID: streamID},
		PromisedStreamID: promisedStreamID,
		HeaderList:       headers,
		PadLength:        padLength,
	}
	if padLength > 0 {
		f.SetPadded()
	}
	return f
}

func (f *PushPromiseFrame) Header() *FrameHeader { return &f.FrameHeader }

func (f *PushPromiseFrame) HasEndHeaders() bool { return f.HasFlags(FlagEndHeaders) }
func (f *PushPromiseFrame) SetEndHeaders()      { f.SetFlags(FlagEndHeaders) }
func (f *PushPromiseFrame) ClearEndHeaders()    { f.ClearFlags(FlagEndHeaders) }

func (f *PushPromiseFrame) HasPadded() bool { return f.HasFlags(FlagPadded) }
func (f *PushPromiseFrame) SetPadded()      { f.SetFlags(FlagPadded) }
func (f *PushPromiseFrame) ClearPadded()    { f.ClearFlags(FlagPadded) }

func (f *PushPromiseFrame) decodePayload(payload []byte, tbl *HeaderTable) error {
	if err := f.checkStreamNonzero(); err != nil {
		return err
	}
	rest, padLength, err := splitPadding(&f.FrameHeader, payload)
	if err != nil {
		return err
	}
	f.PadLength = padLength
	if len(rest) < 4 {
		return fmt.Errorf("%w: PUSH_PROMISE payload too short for promised stream id", ErrFrameSize)
	}
	f.PromisedStreamID = binary.BigEndian.Uint32(rest[0:4]) & 0x7fffffff
	if f.PromisedStreamID == 0 {
		return fmt.Errorf("%w: PUSH_PROMISE with promised stream id 0", ErrProtocol)
	}
	rest = rest[4:]
	f.HeaderBlockFragment = rest
	f.HeaderList, err = tbl.Decode(rest, f.HasEndHeaders())
	return err
}

func (f *PushPromiseFrame) encodePayload(tbl *HeaderTable) ([]byte, error) {
	if f.PromisedStreamID == 0 {
		return nil, fmt.Errorf("%w: PUSH_PROMISE with promised stream id 0", ErrProtocol)
	}
	if f.HeaderList != nil {
		fragment, err := tbl.Encode(f.HeaderList)
		if err != nil {
			return nil, err
		}
		f.HeaderBlockFragment = fragment
	}
	body := binary.BigEndian.AppendUint32(nil, f.PromisedStreamID&0x7fffffff)
	body = append(body, f.HeaderBlockFragment...)
	f.updateLength()
	return padPayload(&f.FrameHeader, f.PadLength, body), nil
}

func (f *PushPromiseFrame) updateLength() {
	n := 4 + len(f.HeaderBlockFragment)
	if f.HasPadded() {
		n += 1 + int(f.PadLength)
	}
	f.Length = uint32(n)
}
