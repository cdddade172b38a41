package h2

import (
	"bytes"
	"fmt"

	"golang.org/x/net/http2/hpack"
)

// HeaderTable binds one connection direction to its HPACK state. The
// dynamic table mutates as a side effect of every Encode and Decode, so a
// connection needs two: one the ingress frames decode against, one the
// egress frames encode against. Both ends of a direction must see the
// fragments in wire order for their tables to stay mirrored.
//
// HeaderTable is not safe for concurrent use; the connection layer
// guarantees serial access (the gateway serves both directions of a
// connection from one goroutine).
type HeaderTable struct {
	encBuf bytes.Buffer
	enc    *hpack.Encoder

	dec    *hpack.Decoder
	fields []hpack.HeaderField
}

// NewHeaderTable builds a table with the given dynamic table capacity,
// usually DefaultHeaderTableSize until SETTINGS says otherwise.
func NewHeaderTable(capacity uint32) *HeaderTable {
	t := &HeaderTable{}
	t.enc = hpack.NewEncoder(&t.encBuf)
	t.dec = hpack.NewDecoder(capacity, func(f hpack.HeaderField) {
		t.fields = append(t.fields, f)
	})
	if capacity != DefaultHeaderTableSize {
		t.enc.SetMaxDynamicTableSize(capacity)
	}
	return t
}

// Encode compresses fields into a header block fragment, updating the
// dynamic table as a side effect.
func (t *HeaderTable) Encode(fields []hpack.HeaderField) ([]byte, error) {
	t.encBuf.Reset()
	for _, f := range fields {
		if err := t.enc.WriteField(f); err != nil {
			return nil, fmt.Errorf("hpack encode %q: %w", f.Name, err)
		}
	}
	out := make([]byte, t.encBuf.Len())
	copy(out, t.encBuf.Bytes())
	return out, nil
}

// Decode decompresses one header block fragment into header fields. A
// fragment may end mid-representation when the block continues in a
// CONTINUATION frame; the decoder keeps that partial state internally, and
// the next Decode call picks it up. complete is the frame's END_HEADERS
// flag: when set, a representation left hanging is an error.
func (t *HeaderTable) Decode(fragment []byte, complete bool) ([]hpack.HeaderField, error) {
	t.fields = t.fields[:0]
	if _, err := t.dec.Write(fragment); err != nil {
		return nil, fmt.Errorf("hpack decode: %w", err)
	}
	if complete {
		if err := t.dec.Close(); err != nil {
			return nil, fmt.Errorf("hpack decode: %w", err)
		}
	}
	out := make([]hpack.HeaderField, len(t.fields))
	copy(out, t.fields)
	return out, nil
}

// SetCapacity resizes the dynamic table, normally in response to a
// SETTINGS_HEADER_TABLE_SIZE from the peer. The encoder side emits a
// table size update in the next fragment it produces.
func (t *HeaderTable) SetCapacity(n uint32) {
	t.enc.SetMaxDynamicTableSize(n)
	t.dec.SetMaxDynamicTableSize(n)
}
