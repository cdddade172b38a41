package h2

import (
	"errors"
	"testing"
)

func TestParseFrameHeader(t *testing.T) {
	buf := []byte{0x00, 0x01, 0x02, 0x06, 0x01, 0x00, 0x00, 0x00, 0x05}
	h, err := ParseFrameHeader(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Length != 0x000102 {
		t.Fatalf("expected length 0x0102, got %d", h.Length)
	}
	if h.Type != FramePing {
		t.Fatalf("expected PING, got %s", h.Type)
	}
	if h.Flags != FlagAck {
		t.Fatalf("expected flags 0x01, got 0x%02x", uint8(h.Flags))
	}
	if h.StreamID != 5 {
		t.Fatalf("expected stream 5, got %d", h.StreamID)
	}
	if h.Reserved {
		t.Fatal("reserved bit should not be set")
	}
}

func TestParseFrameHeaderTruncated(t *testing.T) {
	_, err := ParseFrameHeader([]byte{0x00, 0x00, 0x00, 0x04})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}
}

func TestReservedBitIgnored(t *testing.T) {
	plain := []byte{0x00, 0x00, 0x00, 0x04, 0x00, 0x00, 0x00, 0x00, 0x07}
	reserved := append([]byte(nil), plain...)
	reserved[5] |= 0x80

	hPlain, err := ParseFrameHeader(plain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hReserved, err := ParseFrameHeader(reserved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hPlain.StreamID != hReserved.StreamID {
		t.Fatalf("stream id differs: %d vs %d", hPlain.StreamID, hReserved.StreamID)
	}
	if !hReserved.Reserved {
		t.Fatal("reserved bit should be preserved for diagnostics")
	}
	if hPlain.Reserved {
		t.Fatal("reserved bit set on plain header")
	}
}

func TestReservedBitWrittenBack(t *testing.T) {
	h := FrameHeader{Length: 0, Type: FrameSettings, StreamID: 0, Reserved: true}
	buf := h.appendTo(nil)
	if buf[5]&0x80 == 0 {
		t.Fatal("explicitly set reserved bit should be serialized")
	}
	h.Reserved = false
	buf = h.appendTo(nil)
	if buf[5]&0x80 != 0 {
		t.Fatal("reserved bit must default to 0 on the wire")
	}
}

func TestFlagIdempotence(t *testing.T) {
	cases := []struct {
		name string
		flag Flags
	}{
		{"end_stream", FlagEndStream},
		{"end_headers", FlagEndHeaders},
		{"padded", FlagPadded},
		{"priority", FlagPriority},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var h FrameHeader
			h.SetFlags(tc.flag)
			if !h.HasFlags(tc.flag) {
				t.Fatalf("flag 0x%02x not set", uint8(tc.flag))
			}
			h.ClearFlags(tc.flag)
			if h.Flags != 0 {
				t.Fatalf("expected empty flags after set+clear, got 0x%02x", uint8(h.Flags))
			}
		})
	}

	// Clearing one bit must leave the others alone.
	h := FrameHeader{Flags: FlagEndStream | FlagEndHeaders | FlagPadded}
	h.ClearFlags(FlagPadded)
	if h.Flags != FlagEndStream|FlagEndHeaders {
		t.Fatalf("expected 0x05 after clearing PADDED, got 0x%02x", uint8(h.Flags))
	}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := FrameHeader{Length: 16384, Type: FrameData, Flags: FlagEndStream | FlagPadded, StreamID: 0x7fffffff}
	got, err := ParseFrameHeader(h.appendTo(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != h {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, h)
	}
}
