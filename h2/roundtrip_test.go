package h2

import (
	"bytes"
	"reflect"
	"testing"

	"golang.org/x/net/http2/hpack"
)

var sampleHeaders = []hpack.HeaderField{
	{Name: ":method", Value: "GET"},
	{Name: ":path", Value: "/index.html"},
	{Name: ":scheme", Value: "https"},
	{Name: ":authority", Value: "example.com"},
	{Name: "user-agent", Value: "h2wire-test"},
}

func roundTripFrames(t *testing.T) []Frame {
	t.Helper()

	hf := NewHeadersFrame(1, sampleHeaders, 0)
	hf.SetEndHeaders()
	hf.SetEndStream()

	hfp := NewHeadersFrameWithPriority(3, sampleHeaders, PriorityParam{
		Exclusive:        true,
		StreamDependency: 1,
		Weight:           255,
	}, 4)
	hfp.SetEndHeaders()

	df := NewDataFrame(1, []byte("hello world"), 0)
	df.SetEndStream()

	pp := NewPushPromiseFrame(1, 2, sampleHeaders, 3)
	pp.SetEndHeaders()

	return []Frame{
		df,
		NewDataFrame(5, []byte("padded"), 7),
		hf,
		hfp,
		NewPriorityFrame(7, PriorityParam{StreamDependency: 3, Weight: 100}),
		NewRSTStreamFrame(11, ErrCodeCancel),
		NewSettingsFrame(Settings{
			{ID: SettingMaxFrameSize, Val: 16384},
			{ID: SettingEnablePush, Val: 0},
			{ID: SettingID(0x99), Val: 12345},
		}),
		NewSettingsAck(),
		pp,
		NewPingFrame(0x1122334455667788),
		NewPingAck(7),
		NewGoawayFrame(9, ErrCodeEnhanceYourCalm, []byte("calm down")),
		NewGoawayFrame(0, ErrCodeNo, nil),
		NewWindowUpdateFrame(0, 65535),
		NewWindowUpdateFrame(5, 1),
	}
}

// Every well-formed frame must decode back to itself when the encode and
// decode sides hold mirrored HPACK tables.
func TestRoundTrip(t *testing.T) {
	for _, original := range roundTripFrames(t) {
		t.Run(original.Header().Type.String(), func(t *testing.T) {
			egress := NewHeaderTable(DefaultHeaderTableSize)
			ingress := NewHeaderTable(DefaultHeaderTableSize)

			var wire bytes.Buffer
			n, err := WriteFrame(&wire, original, egress)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if n != wire.Len() {
				t.Fatalf("WriteFrame reported %d bytes, wrote %d", n, wire.Len())
			}
			if got := original.Header().Length; got != uint32(wire.Len()-FrameHeaderLen) {
				t.Fatalf("header length %d, serialized payload %d", got, wire.Len()-FrameHeaderLen)
			}

			decoded, err := ReadFrame(&wire, ingress)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			assertFramesEqual(t, original, decoded)
		})
	}
}

// A CONTINUATION round trip needs the preceding header block fragment to
// flow through the same tables, so it runs as its own wire sequence.
func TestRoundTripContinuation(t *testing.T) {
	egress := NewHeaderTable(DefaultHeaderTableSize)
	ingress := NewHeaderTable(DefaultHeaderTableSize)

	hf := NewHeadersFrame(9, sampleHeaders[:2], 0)
	cf := NewContinuationFrame(9, sampleHeaders[2:])
	cf.SetEndHeaders()

	var wire bytes.Buffer
	if _, err := WriteFrame(&wire, hf, egress); err != nil {
		t.Fatalf("encode HEADERS: %v", err)
	}
	if _, err := WriteFrame(&wire, cf, egress); err != nil {
		t.Fatalf("encode CONTINUATION: %v", err)
	}

	first, err := ReadFrame(&wire, ingress)
	if err != nil {
		t.Fatalf("decode HEADERS: %v", err)
	}
	second, err := ReadFrame(&wire, ingress)
	if err != nil {
		t.Fatalf("decode CONTINUATION: %v", err)
	}

	var got []hpack.HeaderField
	got = append(got, first.(*HeadersFrame).HeaderList...)
	got = append(got, second.(*ContinuationFrame).HeaderList...)
	if !reflect.DeepEqual(got, sampleHeaders) {
		t.Fatalf("reassembled header list mismatch:\n got %+v\nwant %+v", got, sampleHeaders)
	}
}

func assertFramesEqual(t *testing.T, want, got Frame) {
	t.Helper()
	wh, gh := want.Header(), got.Header()
	if wh.Type != gh.Type || wh.Flags != gh.Flags || wh.StreamID != gh.StreamID || wh.Length != gh.Length {
		t.Fatalf("header mismatch:\n got %s\nwant %s", gh, wh)
	}
	switch want := want.(type) {
	case *DataFrame:
		got := got.(*DataFrame)
		if !bytes.Equal(want.Data, got.Data) || want.PadLength != got.PadLength {
			t.Fatalf("DATA mismatch: %+v vs %+v", got, want)
		}
	case *HeadersFrame:
		got := got.(*HeadersFrame)
		if !reflect.DeepEqual(want.HeaderList, got.HeaderList) {
			t.Fatalf("header list mismatch:\n got %+v\nwant %+v", got.HeaderList, want.HeaderList)
		}
		if want.PadLength != got.PadLength || want.Priority != got.Priority {
			t.Fatalf("HEADERS mismatch: %+v vs %+v", got, want)
		}
	case *PriorityFrame:
		if want.Priority != got.(*PriorityFrame).Priority {
			t.Fatalf("PRIORITY mismatch: %+v vs %+v", got, want)
		}
	case *RSTStreamFrame:
		if want.ErrorCode != got.(*RSTStreamFrame).ErrorCode {
			t.Fatalf("RST_STREAM mismatch: %+v vs %+v", got, want)
		}
	case *SettingsFrame:
		got := got.(*SettingsFrame)
		if len(want.Settings) != len(got.Settings) {
			t.Fatalf("SETTINGS mismatch: %+v vs %+v", got.Settings, want.Settings)
		}
		for i := range want.Settings {
			if want.Settings[i] != got.Settings[i] {
				t.Fatalf("SETTINGS entry %d mismatch: %+v vs %+v", i, got.Settings[i], want.Settings[i])
			}
		}
	case *PushPromiseFrame:
		got := got.(*PushPromiseFrame)
		if want.PromisedStreamID != got.PromisedStreamID || want.PadLength != got.PadLength {
			t.Fatalf("PUSH_PROMISE mismatch: %+v vs %+v", got, want)
		}
		if !reflect.DeepEqual(want.HeaderList, got.HeaderList) {
			t.Fatalf("header list mismatch:\n got %+v\nwant %+v", got.HeaderList, want.HeaderList)
		}
	case *PingFrame:
		if want.OpaqueData != got.(*PingFrame).OpaqueData {
			t.Fatalf("PING mismatch: %+v vs %+v", got, want)
		}
	case *GoawayFrame:
		got := got.(*GoawayFrame)
		if want.LastStreamID != got.LastStreamID || want.ErrorCode != got.ErrorCode || !bytes.Equal(want.AdditionalDebugData, got.AdditionalDebugData) {
			t.Fatalf("GOAWAY mismatch: %+v vs %+v", got, want)
		}
	case *WindowUpdateFrame:
		if want.WindowSizeIncrement != got.(*WindowUpdateFrame).WindowSizeIncrement {
			t.Fatalf("WINDOW_UPDATE mismatch: %+v vs %+v", got, want)
		}
	default:
		t.Fatalf("unhandled frame type %T", want)
	}
}

// Padding must be transparent: the same logical payload with and without
// padding decodes to the same semantic fields.
func TestPaddingTransparency(t *testing.T) {
	t.Run("DATA", func(t *testing.T) {
		padded := decodeOne(t, NewDataFrame(1, []byte("payload"), 6))
		plain := decodeOne(t, NewDataFrame(1, []byte("payload"), 0))
		if !bytes.Equal(padded.(*DataFrame).Data, plain.(*DataFrame).Data) {
			t.Fatal("padded and plain DATA decode to different data")
		}
	})
	t.Run("HEADERS", func(t *testing.T) {
		p := NewHeadersFrame(1, sampleHeaders, 5)
		p.SetEndHeaders()
		q := NewHeadersFrame(1, sampleHeaders, 0)
		q.SetEndHeaders()
		padded := decodeOne(t, p).(*HeadersFrame)
		plain := decodeOne(t, q).(*HeadersFrame)
		if !reflect.DeepEqual(padded.HeaderList, plain.HeaderList) {
			t.Fatal("padded and plain HEADERS decode to different header lists")
		}
	})
	t.Run("PUSH_PROMISE", func(t *testing.T) {
		p := NewPushPromiseFrame(1, 2, sampleHeaders, 8)
		p.SetEndHeaders()
		q := NewPushPromiseFrame(1, 2, sampleHeaders, 0)
		q.SetEndHeaders()
		padded := decodeOne(t, p).(*PushPromiseFrame)
		plain := decodeOne(t, q).(*PushPromiseFrame)
		if padded.PromisedStreamID != plain.PromisedStreamID || !reflect.DeepEqual(padded.HeaderList, plain.HeaderList) {
			t.Fatal("padded and plain PUSH_PROMISE decode differently")
		}
	})
}

func decodeOne(t *testing.T, f Frame) Frame {
	t.Helper()
	var wire bytes.Buffer
	if _, err := WriteFrame(&wire, f, NewHeaderTable(DefaultHeaderTableSize)); err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := ReadFrame(&wire, NewHeaderTable(DefaultHeaderTableSize))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return decoded
}
