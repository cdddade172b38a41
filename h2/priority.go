package h2

// PriorityFrame (type=0x2) advises the peer of a stream's priority.
// Exactly 5 octets of payload.
type PriorityFrame struct {
	FrameHeader
	Priority PriorityParam
}

func NewPriorityFrame(streamID uint32, prio PriorityParam) *PriorityFrame {
	f := &PriorityFrame{
		FrameHeader: FrameHeader{Type: FramePriority, StreamID: streamID},
		Priority:    prio,
	}
	f.updateLength()
	return f
}

func (f *PriorityFrame) Header() *FrameHeader { return &f.FrameHeader }

func (f *PriorityFrame) decodePayload(payload []byte, tbl *HeaderTable) error {
	if err := f.checkStreamNonzero(); err != nil {
		return err
	}
	if err := checkFixedLen(&f.FrameHeader, payload, priorityBlockLen); err != nil {
		return err
	}
	f.Priority = parsePriorityParam(payload)
	return nil
}

func (f *PriorityFrame) encodePayload(tbl *HeaderTable) ([]byte, error) {
	return f.Priority.appendTo(nil), nil
}

func (f *PriorityFrame) updateLength() { f.Length = priorityBlockLen }
