package h2

import "encoding/binary"

// PingFrame (type=0x6) measures round-trip time or probes an idle
// connection. Exactly 8 octets of opaque payload.
type PingFrame struct {
	FrameHeader
	OpaqueData uint64
}

func NewPingFrame(opaqueData uint64) *PingFrame {
	f := &PingFrame{
		FrameHeader: FrameHeader{Type: FramePing},
		OpaqueData:  opaqueData,
	}
	f.updateLength()
	return f
}

// NewPingAck builds the PING frame acknowledging a received ping; it must
// echo the sender's opaque data.
func NewPingAck(opaqueData uint64) *PingFrame {
	f := NewPingFrame(opaqueData)
	f.SetAck()
	return f
}

func (f *PingFrame) Header() *FrameHeader { return &f.FrameHeader }

func (f *PingFrame) HasAck() bool { return f.HasFlags(FlagAck) }
func (f *PingFrame) SetAck()      { f.SetFlags(FlagAck) }
func (f *PingFrame) ClearAck()    { f.ClearFlags(FlagAck) }

func (f *PingFrame) decodePayload(payload []byte, tbl *HeaderTable) error {
	if err := f.checkStreamZero(); err != nil {
		return err
	}
	if err := checkFixedLen(&f.FrameHeader, payload, 8); err != nil {
		return err
	}
	f.OpaqueData = binary.BigEndian.Uint64(payload)
	return nil
}

func (f *PingFrame) encodePayload(tbl *HeaderTable) ([]byte, error) {
	return binary.BigEndian.AppendUint64(nil, f.OpaqueData), nil
}

func (f *PingFrame) updateLength() { f.Length = 8 }
