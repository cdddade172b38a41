package h2

import "encoding/binary"

// RSTStreamFrame (type=0x3) terminates a stream immediately. Exactly 4
// octets of payload.
type RSTStreamFrame struct {
	FrameHeader
	ErrorCode ErrCode
}

func NewRSTStreamFrame(streamID uint32, code ErrCode) *RSTStreamFrame {
	f := &RSTStreamFrame{
		FrameHeader: FrameHeader{Type: FrameRSTStream, StreamID: streamID},
		ErrorCode:   code,
	}
	f.updateLength()
	return f
}

func (f *RSTStreamFrame) Header() *FrameHeader { return &f.FrameHeader }

func (f *RSTStreamFrame) decodePayload(payload []byte, tbl *HeaderTable) error {
	if err := f.checkStreamNonzero(); err != nil {
		return err
	}
	if err := checkFixedLen(&f.FrameHeader, payload, 4); err != nil {
		return err
	}
	f.ErrorCode = ErrCode(binary.BigEndian.Uint32(payload))
	return nil
}

func (f *RSTStreamFrame) encodePayload(tbl *HeaderTable) ([]byte, error) {
	return binary.BigEndian.AppendUint32(nil, uint32(f.ErrorCode)), nil
}

func (f *RSTStreamFrame) updateLength() { f.Length = 4 }
