package h2

import (
	"encoding/binary"
	"fmt"
)

// GoawayFrame (type=0x7) starts connection shutdown or reports a
// connection error. At least 8 octets of payload; anything after the
// error code is free-form debug data.
type GoawayFrame struct {
	FrameHeader
	LastStreamID        uint32
	ErrorCode           ErrCode
	AdditionalDebugData []byte
}

func NewGoawayFrame(lastStreamID uint32, code ErrCode, debugData []byte) *GoawayFrame {
	f := &GoawayFrame{
		FrameHeader:         FrameHeader{Type: FrameGoaway},
		LastStreamID:        lastStreamID,
		ErrorCode:           code,
		AdditionalDebugData: debugData,
	}
	f.updateLength()
	return f
}

func (f *GoawayFrame) Header() *FrameHeader { return &f.FrameHeader }

func (f *GoawayFrame) decodePayload(payload []byte, tbl *HeaderTable) error {
	if err := f.checkStreamZero(); err != nil {
		return err
	}
	if len(payload) < 8 {
		return fmt.Errorf("%w: GOAWAY payload must be at least 8 octets, got %d", ErrFrameSize, len(payload))
	}
	f.LastStreamID = binary.BigEndian.Uint32(payload[0:4]) & 0x7fffffff
	f.ErrorCode = ErrCode(binary.BigEndian.Uint32(payload[4:8]))
	f.AdditionalDebugData = payload[8:]
	return nil
}

func (f *GoawayFrame) encodePayload(tbl *HeaderTable) ([]byte, error) {
	buf := make([]byte, 0, 8+len(f.AdditionalDebugData))
	buf = binary.BigEndian.AppendUint32(buf, f.LastStreamID&0x7fffffff)
	buf = binary.BigEndian.AppendUint32(buf, uint32(f.ErrorCode))
	return append(buf, f.AdditionalDebugData...), nil
}

func (f *GoawayFrame) updateLength() { f.Length = uint32(8 + len(f.AdditionalDebugData)) }
