package h2

import "golang.org/x/net/http2/hpack"

// ContinuationFrame (type=0x9) carries the rest of a header block started
// by a HEADERS or PUSH_PROMISE frame on the same stream. Whether it
// actually follows such a frame is the stream layer's check; the codec
// only decodes the fragment against the running HPACK state.
type ContinuationFrame struct {
	FrameHeader

	HeaderList          []hpack.HeaderField
	HeaderBlockFragment []byte
}

func NewContinuationFrame(streamID uint32, headers []hpack.HeaderField) *ContinuationFrame {
	return &ContinuationFrame{
		FrameHeader: FrameHeader{Type: FrameContinuation, StreamID: streamID},
		HeaderList:  headers,
	}
}

func (f *ContinuationFrame) Header() *FrameHeader { return &f.FrameHeader }

func (f *ContinuationFrame) HasEndHeaders() bool { return f.HasFlags(FlagEndHeaders) }
func (f *ContinuationFrame) SetEndHeaders()      { f.SetFlags(FlagEndHeaders) }
func (f *ContinuationFrame) ClearEndHeaders()    { f.ClearFlags(FlagEndHeaders) }

func (f *ContinuationFrame) decodePayload(payload []byte, tbl *HeaderTable) error {
	if err := f.checkStreamNonzero(); err != nil {
		return err
	}
	f.HeaderBlockFragment = payload
	var err error
	f.HeaderList, err = tbl.Decode(payload, f.HasEndHeaders())
	return err
}

func (f *ContinuationFrame) encodePayload(tbl *HeaderTable) ([]byte, error) {
	if f.HeaderList != nil {
		fragment, err := tbl.Encode(f.HeaderList)
		if err != nil {
			return nil, err
		}
		f.HeaderBlockFragment = fragment
	}
	f.updateLength()
	return f.HeaderBlockFragment, nil
}

func (f *ContinuationFrame) updateLength() { f.Length = uint32(len(f.HeaderBlockFragment)) }
