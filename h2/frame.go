package h2

import (
	"fmt"
	"io"
)

// Frame is a typed frame record: a FrameHeader plus the payload fields of
// one of the ten frame types. Records are produced by ReadFrame and
// consumed by WriteFrame; WriteFrame only serializes, it does not retain
// the record.
type Frame interface {
	Header() *FrameHeader

	// encodePayload serializes the payload fields. Frames carrying a
	// header block fragment re-encode their header list against tbl.
	encodePayload(tbl *HeaderTable) ([]byte, error)

	// decodePayload parses payload into the record's fields, delegating
	// header block fragments to tbl.
	decodePayload(payload []byte, tbl *HeaderTable) error

	// updateLength recomputes Header().Length from the payload fields.
	updateLength()
}

func newFrame(t FrameType) Frame {
	switch t {
	case FrameData:
		return &DataFrame{}
	case FrameHeaders:
		return &HeadersFrame{}
	case FramePriority:
		return &PriorityFrame{}
	case FrameRSTStream:
		return &RSTStreamFrame{}
	case FrameSettings:
		return &SettingsFrame{}
	case FramePushPromise:
		return &PushPromiseFrame{}
	case FramePing:
		return &PingFrame{}
	case FrameGoaway:
		return &GoawayFrame{}
	case FrameWindowUpdate:
		return &WindowUpdateFrame{}
	case FrameContinuation:
		return &ContinuationFrame{}
	}
	return nil
}

// ReadFrame reads one frame from r, decoding header block fragments
// against tbl. It is ReadFrameLimit with the default maximum frame size.
func ReadFrame(r io.Reader, tbl *HeaderTable) (Frame, error) {
	return ReadFrameLimit(r, tbl, DefaultMaxFrameSize)
}

// ReadFrameLimit reads one frame from r, rejecting payloads longer than
// maxFrameSize (the current SETTINGS_MAX_FRAME_SIZE value).
//
// A clean connection close on a frame boundary returns io.EOF. A close in
// the middle of a frame returns ErrTruncated: the codec never delivers a
// partial frame. An unknown frame type returns an UnknownTypeError after
// consuming the payload, so the caller can ignore the frame and keep
// reading (RFC 7540 section 4.1).
func ReadFrameLimit(r io.Reader, tbl *HeaderTable, maxFrameSize uint32) (Frame, error) {
	var hdr [FrameHeaderLen]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("%w: connection closed inside frame header", ErrTruncated)
		}
		return nil, err
	}

	fh, err := ParseFrameHeader(hdr[:])
	if err != nil {
		return nil, err
	}
	if fh.Length > maxFrameSize {
		return nil, &FrameError{Header: fh, Err: fmt.Errorf("%w: length %d exceeds max frame size %d", ErrFrameSize, fh.Length, maxFrameSize)}
	}

	payload := make([]byte, fh.Length)
	if _, err := io.ReadFull(r, payload); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, &FrameError{Header: fh, Err: fmt.Errorf("%w: connection closed inside %s payload", ErrTruncated, fh.Type)}
		}
		return nil, err
	}

	f := newFrame(fh.Type)
	if f == nil {
		// Payload already consumed, stream stays aligned.
		return nil, &UnknownTypeError{Header: fh}
	}
	*f.Header() = fh
	if err := f.decodePayload(payload, tbl); err != nil {
		if _, ok := err.(*FrameError); ok {
			return nil, err
		}
		return nil, &FrameError{Header: fh, Err: err}
	}
	return f, nil
}

// WriteFrame serializes f and writes it to w, returning the number of
// bytes written. The payload is serialized first and the header length
// recomputed from it, then header and payload go out in a single Write so
// the peer never sees a header without its payload.
func WriteFrame(w io.Writer, f Frame, tbl *HeaderTable) (int, error) {
	payload, err := f.encodePayload(tbl)
	if err != nil {
		return 0, &FrameError{Header: *f.Header(), Err: err}
	}
	if uint32(len(payload)) > MaxAllowedFrameSize {
		return 0, &FrameError{Header: *f.Header(), Err: fmt.Errorf("%w: payload of %d octets does not fit the 24-bit length field", ErrFrameSize, len(payload))}
	}

	fh := f.Header()
	fh.Length = uint32(len(payload))

	buf := make([]byte, 0, FrameHeaderLen+len(payload))
	buf = fh.appendTo(buf)
	buf = append(buf, payload...)
	return w.Write(buf)
}

// splitPadding strips the pad-length octet and the trailing padding when
// the PADDED flag is set. Padding content is ignored; only its length is
// checked. pad length equal to the remaining payload is legal (zero data
// octets).
func splitPadding(h *FrameHeader, payload []byte) (rest []byte, padLength uint8, err error) {
	if !h.HasFlags(FlagPadded) {
		return payload, 0, nil
	}
	if len(payload) < 1 {
		return nil, 0, fmt.Errorf("%w: missing pad length octet", ErrMalformedPadding)
	}
	padLength = payload[0]
	rest = payload[1:]
	if int(padLength) > len(rest) {
		return nil, 0, fmt.Errorf("%w: pad length %d with only %d octets after it", ErrMalformedPadding, padLength, len(rest))
	}
	return rest[:len(rest)-int(padLength)], padLength, nil
}

// padPayload prefixes the pad-length octet and appends padLength fill
// octets when the PADDED flag is set. Fill is zeros; the wire does not
// require any particular content.
func padPayload(h *FrameHeader, padLength uint8, body []byte) []byte {
	if !h.HasFlags(FlagPadded) {
		return body
	}
	out := make([]byte, 0, 1+len(body)+int(padLength))
	out = append(out, padLength)
	out = append(out, body...)
	return append(out, make([]byte, int(padLength))...)
}

func checkFixedLen(h *FrameHeader, payload []byte, want int) error {
	if len(payload) != want {
		return fmt.Errorf("%w: %s payload must be %d octets, got %d", ErrFrameSize, h.Type, want, len(payload))
	}
	return nil
}
