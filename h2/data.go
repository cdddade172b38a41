package h2

// DataFrame (type=0x0) carries a run of application octets on a stream,
// optionally padded.
type DataFrame struct {
	FrameHeader

	// PadLength is the number of padding octets. Meaningful only while
	// the PADDED flag is set.
	PadLength uint8

	Data []byte
}

// NewDataFrame builds a DATA frame for streamID. A non-zero padLength
// also sets the PADDED flag.
func NewDataFrame(streamID uint32, data []byte, padLength uint8) *DataFrame {
	f := &DataFrame{
		FrameHeader: FrameHeader{Type: FrameData, StreamID: streamID},
		Data:        data,
		PadLength:   padLength,
	}
	if padLength > 0 {
		f.SetPadded()
	}
	f.updateLength()
	return f
}

func (f *DataFrame) Header() *FrameHeader { return &f.FrameHeader }

func (f *DataFrame) HasEndStream() bool { return f.HasFlags(FlagEndStream) }
func (f *DataFrame) SetEndStream()      { f.SetFlags(FlagEndStream) }
func (f *DataFrame) ClearEndStream()    { f.ClearFlags(FlagEndStream) }

func (f *DataFrame) HasPadded() bool { return f.HasFlags(FlagPadded) }
func (f *DataFrame) SetPadded()      { f.SetFlags(FlagPadded) }
func (f *DataFrame) ClearPadded()    { f.ClearFlags(FlagPadded) }

func (f *DataFrame) decodePayload(payload []byte, tbl *HeaderTable) error {
	if err := f.checkStreamNonzero(); err != nil {
		return err
	}
	rest, padLength, err := splitPadding(&f.FrameHeader, payload)
	if err != nil {
		return err
	}
	f.PadLength = padLength
	f.Data = rest
	return nil
}

func (f *DataFrame) encodePayload(tbl *HeaderTable) ([]byte, error) {
	return padPayload(&f.FrameHeader, f.PadLength, f.Data), nil
}

func (f *DataFrame) updateLength() {
	n := len(f.Data)
	if f.HasPadded() {
		n += 1 + int(f.PadLength)
	}
	f.Length = uint32(n)
}
