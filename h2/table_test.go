package h2

import (
	"reflect"
	"testing"

	"golang.org/x/net/http2/hpack"
)

func TestHeaderTableEncodeDecode(t *testing.T) {
	egress := NewHeaderTable(DefaultHeaderTableSize)
	ingress := NewHeaderTable(DefaultHeaderTableSize)

	fields := []hpack.HeaderField{
		{Name: ":status", Value: "200"},
		{Name: "x-request-id", Value: "abc123"},
	}

	first, err := egress.Encode(fields)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ingress.Decode(first, true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, fields) {
		t.Fatalf("decode mismatch:\n got %+v\nwant %+v", got, fields)
	}

	// The second encode of the same fields hits the dynamic table the
	// first one populated, so the fragment shrinks and the mirrored
	// decoder must still resolve it.
	second, err := egress.Encode(fields)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(second) >= len(first) {
		t.Fatalf("second fragment (%d octets) should be smaller than the first (%d)", len(second), len(first))
	}
	got, err = ingress.Decode(second, true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, fields) {
		t.Fatalf("decode mismatch after table hit:\n got %+v\nwant %+v", got, fields)
	}
}

// A header block split across fragments decodes as one HPACK stream: the
// decoder carries partial state from one Decode call into the next.
func TestHeaderTableSplitFragment(t *testing.T) {
	egress := NewHeaderTable(DefaultHeaderTableSize)
	ingress := NewHeaderTable(DefaultHeaderTableSize)

	fields := []hpack.HeaderField{
		{Name: ":method", Value: "POST"},
		{Name: "content-type", Value: "application/json"},
		{Name: "x-trace", Value: "0123456789abcdef0123456789abcdef"},
	}
	fragment, err := egress.Encode(fields)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(fragment) < 4 {
		t.Fatalf("fragment too small to split: %d octets", len(fragment))
	}

	// Split mid-fragment, almost certainly inside a representation.
	cut := len(fragment)/2 + 1
	gotFirst, err := ingress.Decode(fragment[:cut], false)
	if err != nil {
		t.Fatalf("decode first half: %v", err)
	}
	gotSecond, err := ingress.Decode(fragment[cut:], true)
	if err != nil {
		t.Fatalf("decode second half: %v", err)
	}

	got := append(append([]hpack.HeaderField(nil), gotFirst...), gotSecond...)
	if !reflect.DeepEqual(got, fields) {
		t.Fatalf("reassembled fields mismatch:\n got %+v\nwant %+v", got, fields)
	}
}

func TestHeaderTableIncompleteBlock(t *testing.T) {
	egress := NewHeaderTable(DefaultHeaderTableSize)
	ingress := NewHeaderTable(DefaultHeaderTableSize)

	fragment, err := egress.Encode([]hpack.HeaderField{{Name: "x-long-header-name", Value: "some value"}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	// Chopping the tail off and claiming the block is complete must fail.
	if _, err := ingress.Decode(fragment[:len(fragment)-2], true); err == nil {
		t.Fatal("truncated complete block should not decode")
	}
}

func TestHeaderTableSetCapacity(t *testing.T) {
	egress := NewHeaderTable(DefaultHeaderTableSize)
	ingress := NewHeaderTable(DefaultHeaderTableSize)

	egress.SetCapacity(256)
	ingress.SetCapacity(256)

	fields := []hpack.HeaderField{{Name: "x-small", Value: "v"}}
	fragment, err := egress.Encode(fields)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := ingress.Decode(fragment, true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, fields) {
		t.Fatalf("decode mismatch after resize:\n got %+v\nwant %+v", got, fields)
	}
}
