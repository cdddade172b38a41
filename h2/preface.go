package h2

import (
	"fmt"
	"io"
)

// WritePreface sends the client connection preface. A client sends it
// first on every connection, both over TLS (after ALPN picked "h2") and
// in cleartext h2c.
func WritePreface(w io.Writer) error {
	_, err := io.WriteString(w, ClientPreface)
	return err
}

// ExpectPreface reads and checks the client connection preface.
func ExpectPreface(r io.Reader) error {
	buf := make([]byte, len(ClientPreface))
	if _, err := io.ReadFull(r, buf); err != nil {
		return fmt.Errorf("reading connection preface: %w", err)
	}
	if string(buf) != ClientPreface {
		return fmt.Errorf("%w: invalid connection preface %q", ErrProtocol, buf)
	}
	return nil
}

// Handshake runs the server side of connection setup: read the client
// preface and the client's SETTINGS frame, send our own SETTINGS, then
// ACK theirs. It returns the peer's settings for the connection layer to
// apply. tbl is the ingress direction's table.
func Handshake(rw io.ReadWriter, tbl *HeaderTable, local Settings) (Settings, error) {
	if err := ExpectPreface(rw); err != nil {
		return nil, err
	}

	f, err := ReadFrame(rw, tbl)
	if err != nil {
		return nil, err
	}
	sf, ok := f.(*SettingsFrame)
	if !ok || sf.HasAck() {
		return nil, fmt.Errorf("%w: expected SETTINGS after preface, got %s", ErrProtocol, f.Header())
	}

	if _, err := WriteFrame(rw, NewSettingsFrame(local), nil); err != nil {
		return nil, fmt.Errorf("sending server SETTINGS: %w", err)
	}
	if _, err := WriteFrame(rw, NewSettingsAck(), nil); err != nil {
		return nil, fmt.Errorf("sending SETTINGS ACK: %w", err)
	}
	return sf.Settings, nil
}

// ClientHandshake runs the client side: send the preface and our
// SETTINGS, then read frames until the server's SETTINGS arrives and ACK
// it. SETTINGS ACKs and unknown frame types are skipped on the way; any
// other frame is a protocol error. tbl is the ingress direction's table.
func ClientHandshake(rw io.ReadWriter, tbl *HeaderTable, local Settings) (Settings, error) {
	if err := WritePreface(rw); err != nil {
		return nil, fmt.Errorf("sending connection preface: %w", err)
	}
	if _, err := WriteFrame(rw, NewSettingsFrame(local), nil); err != nil {
		return nil, fmt.Errorf("sending client SETTINGS: %w", err)
	}

	for {
		f, err := ReadFrame(rw, tbl)
		if err != nil {
			if IsUnknownType(err) {
				continue
			}
			return nil, err
		}
		sf, ok := f.(*SettingsFrame)
		if !ok {
			return nil, fmt.Errorf("%w: expected SETTINGS from server, got %s", ErrProtocol, f.Header())
		}
		if sf.HasAck() {
			// Our own settings acknowledged before the server's
			// arrived; keep reading.
			continue
		}
		if _, err := WriteFrame(rw, NewSettingsAck(), nil); err != nil {
			return nil, fmt.Errorf("sending SETTINGS ACK: %w", err)
		}
		return sf.Settings, nil
	}
}
