package h2

import (
	"errors"
	"fmt"
)

// ErrCode is a 32-bit error code carried by RST_STREAM and GOAWAY frames.
// Unknown codes are passed through untouched.
type ErrCode uint32

const (
	ErrCodeNo                 ErrCode = 0x0
	ErrCodeProtocol           ErrCode = 0x1
	ErrCodeInternal           ErrCode = 0x2
	ErrCodeFlowControl        ErrCode = 0x3
	ErrCodeSettingsTimeout    ErrCode = 0x4
	ErrCodeStreamClosed       ErrCode = 0x5
	ErrCodeFrameSize          ErrCode = 0x6
	ErrCodeRefusedStream      ErrCode = 0x7
	ErrCodeCancel             ErrCode = 0x8
	ErrCodeCompression        ErrCode = 0x9
	ErrCodeConnect            ErrCode = 0xa
	ErrCodeEnhanceYourCalm    ErrCode = 0xb
	ErrCodeInadequateSecurity ErrCode = 0xc
	ErrCodeHTTP11Required     ErrCode = 0xd
)

var errCodeNames = map[ErrCode]string{
	ErrCodeNo:                 "NO_ERROR",
	ErrCodeProtocol:           "PROTOCOL_ERROR",
	ErrCodeInternal:           "INTERNAL_ERROR",
	ErrCodeFlowControl:        "FLOW_CONTROL_ERROR",
	ErrCodeSettingsTimeout:    "SETTINGS_TIMEOUT",
	ErrCodeStreamClosed:       "STREAM_CLOSED",
	ErrCodeFrameSize:          "FRAME_SIZE_ERROR",
	ErrCodeRefusedStream:      "REFUSED_STREAM",
	ErrCodeCancel:             "CANCEL",
	ErrCodeCompression:        "COMPRESSION_ERROR",
	ErrCodeConnect:            "CONNECT_ERROR",
	ErrCodeEnhanceYourCalm:    "ENHANCE_YOUR_CALM",
	ErrCodeInadequateSecurity: "INADEQUATE_SECURITY",
	ErrCodeHTTP11Required:     "HTTP_1_1_REQUIRED",
}

func (c ErrCode) String() string {
	if name, ok := errCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("UNKNOWN_ERROR_CODE_%d", uint32(c))
}

// Codec error taxonomy. ErrTruncated, ErrFrameSize, ErrMalformedPadding and
// ErrProtocol are connection-fatal; an UnknownTypeError is not. Transport
// errors are returned as-is from the underlying reader or writer.
var (
	// ErrTruncated means the transport delivered fewer bytes than the
	// header or the declared payload length required.
	ErrTruncated = errors.New("h2: truncated frame")

	// ErrFrameSize means the payload length exceeds the maximum frame
	// size, or does not fit the fixed or modular length rule of its type.
	ErrFrameSize = errors.New("h2: frame size error")

	// ErrMalformedPadding means the pad length octet claims more padding
	// than the payload holds.
	ErrMalformedPadding = errors.New("h2: padding exceeds payload")

	// ErrProtocol means the frame violates a shape constraint of its
	// type, such as a SETTINGS frame on a non-zero stream.
	ErrProtocol = errors.New("h2: protocol error")
)

// FrameError wraps a payload decode or encode failure together with the
// header parsed so far, so the connection layer can build a GOAWAY naming
// the offending stream.
type FrameError struct {
	Header FrameHeader
	Err    error
}

func (e *FrameError) Error() string {
	return fmt.Sprintf("%s frame on stream %d: %v", e.Header.Type, e.Header.StreamID, e.Err)
}

func (e *FrameError) Unwrap() error { return e.Err }

// ErrCode maps the failure onto the code a GOAWAY or RST_STREAM should
// carry.
func (e *FrameError) ErrCode() ErrCode {
	switch {
	case errors.Is(e.Err, ErrFrameSize):
		return ErrCodeFrameSize
	case errors.Is(e.Err, ErrMalformedPadding), errors.Is(e.Err, ErrProtocol), errors.Is(e.Err, ErrTruncated):
		return ErrCodeProtocol
	default:
		// Anything else came out of HPACK.
		return ErrCodeCompression
	}
}

// UnknownTypeError reports a frame whose type byte is outside 0x0-0x9.
// The codec has already consumed the payload, so the caller may treat the
// frame as ignored and keep reading. Per RFC 7540 unknown types MUST be
// ignored; this error exists so the caller can count or log them.
type UnknownTypeError struct {
	Header FrameHeader
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("h2: unknown frame type %d on stream %d", uint8(e.Header.Type), e.Header.StreamID)
}

// IsUnknownType reports whether err is an UnknownTypeError, directly or
// wrapped.
func IsUnknownType(err error) bool {
	var ute *UnknownTypeError
	return errors.As(err, &ute)
}
