package h2

import (
	"encoding/binary"
	"fmt"
)

// WindowUpdateFrame (type=0x8) grants flow-control credit, to the whole
// connection on stream 0 or to a single stream otherwise. Exactly 4
// octets of payload. The codec only frames it; window accounting belongs
// to the connection layer.
type WindowUpdateFrame struct {
	FrameHeader
	WindowSizeIncrement uint32
}

func NewWindowUpdateFrame(streamID, increment uint32) *WindowUpdateFrame {
	f := &WindowUpdateFrame{
		FrameHeader:         FrameHeader{Type: FrameWindowUpdate, StreamID: streamID},
		WindowSizeIncrement: increment,
	}
	f.updateLength()
	return f
}

func (f *WindowUpdateFrame) Header() *FrameHeader { return &f.FrameHeader }

func (f *WindowUpdateFrame) decodePayload(payload []byte, tbl *HeaderTable) error {
	if err := checkFixedLen(&f.FrameHeader, payload, 4); err != nil {
		return err
	}
	f.WindowSizeIncrement = binary.BigEndian.Uint32(payload) & 0x7fffffff
	if f.WindowSizeIncrement == 0 {
		return fmt.Errorf("%w: WINDOW_UPDATE with zero increment", ErrProtocol)
	}
	return nil
}

func (f *WindowUpdateFrame) encodePayload(tbl *HeaderTable) ([]byte, error) {
	if f.WindowSizeIncrement == 0 {
		return nil, fmt.Errorf("%w: WINDOW_UPDATE with zero increment", ErrProtocol)
	}
	return binary.BigEndian.AppendUint32(nil, f.WindowSizeIncrement&0x7fffffff), nil
}

func (f *WindowUpdateFrame) updateLength() { f.Length = 4 }
