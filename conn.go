package main

import (
	"bufio"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"

	"golang.org/x/net/http2/hpack"

	"h2wire/h2"
)

// handleConnection speaks HTTP/2 on one accepted connection: handshake,
// then a frame loop answering every completed header block with the
// configured response. One goroutine per connection; each direction owns
// its own HPACK table.
func handleConnection(conn net.Conn, conf Config, tap *FrameTap) {
	defer conn.Close()

	if tlsConn, ok := conn.(*tls.Conn); ok {
		if err := tlsConn.Handshake(); err != nil {
			ErrorLog(err)
			return
		}
		if alpn := tlsConn.ConnectionState().NegotiatedProtocol; alpn != "h2" {
			ErrorLog(fmt.Errorf("peer negotiated %q, want h2", alpn))
			return
		}
	}

	ingress := h2.NewHeaderTable(conf.HTTP2.HeaderTableSize)
	egress := h2.NewHeaderTable(conf.HTTP2.HeaderTableSize)

	br := bufio.NewReader(conn)
	rw := struct {
		io.Reader
		io.Writer
	}{br, conn}

	local := h2.Settings{
		{ID: h2.SettingHeaderTableSize, Val: conf.HTTP2.HeaderTableSize},
		{ID: h2.SettingMaxFrameSize, Val: conf.HTTP2.MaxFrameSize},
		{ID: h2.SettingMaxConcurrentStreams, Val: conf.HTTP2.MaxConcurrentStreams},
	}
	peer, err := h2.Handshake(rw, ingress, local)
	if err != nil {
		ErrorLog(err)
		return
	}
	applyPeerSettings(peer, egress)

	// Payloads we send must respect the peer's limit, reads ours.
	peerMaxFrame := h2.DefaultMaxFrameSize
	if v, ok := peer.Value(h2.SettingMaxFrameSize); ok {
		peerMaxFrame = v
	}

	remote := conn.RemoteAddr().String()

	// A header block may span HEADERS plus CONTINUATION frames; collect
	// fields until END_HEADERS.
	var pendingStream uint32
	var pendingHeaders []hpack.HeaderField

	var lastStream uint32

	for {
		f, err := h2.ReadFrameLimit(br, ingress, conf.HTTP2.MaxFrameSize)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return
			}
			if h2.IsUnknownType(err) {
				continue
			}
			ErrorLog(err)
			code := h2.ErrCodeProtocol
			var fe *h2.FrameError
			if errors.As(err, &fe) {
				code = fe.ErrCode()
			}
			goaway := h2.NewGoawayFrame(lastStream, code, []byte(err.Error()))
			if _, werr := h2.WriteFrame(conn, goaway, egress); werr == nil {
				tap.Publish("send", goaway)
			}
			return
		}
		tap.Publish("recv", f)

		switch f := f.(type) {
		case *h2.HeadersFrame:
			lastStream = f.StreamID
			if f.HasEndHeaders() {
				if err := respond(conn, egress, tap, conf, f.StreamID, f.HeaderList, peerMaxFrame, remote); err != nil {
					ErrorLog(err)
					return
				}
			} else {
				pendingStream = f.StreamID
				pendingHeaders = append([]hpack.HeaderField(nil), f.HeaderList...)
			}
		case *h2.ContinuationFrame:
			if f.StreamID != pendingStream {
				// Sequencing violation; the codec only checks shape.
				goaway := h2.NewGoawayFrame(lastStream, h2.ErrCodeProtocol, []byte("CONTINUATION on unexpected stream"))
				if _, werr := h2.WriteFrame(conn, goaway, egress); werr == nil {
					tap.Publish("send", goaway)
				}
				return
			}
			pendingHeaders = append(pendingHeaders, f.HeaderList...)
			if f.HasEndHeaders() {
				headers := pendingHeaders
				pendingHeaders = nil
				pendingStream = 0
				if err := respond(conn, egress, tap, conf, f.StreamID, headers, peerMaxFrame, remote); err != nil {
					ErrorLog(err)
					return
				}
			}
		case *h2.SettingsFrame:
			if !f.HasAck() {
				applyPeerSettings(f.Settings, egress)
				if v, ok := f.Settings.Value(h2.SettingMaxFrameSize); ok {
					peerMaxFrame = v
				}
				ack := h2.NewSettingsAck()
				if _, err := h2.WriteFrame(conn, ack, egress); err != nil {
					ErrorLog(err)
					return
				}
				tap.Publish("send", ack)
			}
		case *h2.PingFrame:
			if !f.HasAck() {
				ack := h2.NewPingAck(f.OpaqueData)
				if _, err := h2.WriteFrame(conn, ack, egress); err != nil {
					ErrorLog(err)
					return
				}
				tap.Publish("send", ack)
			}
		case *h2.GoawayFrame:
			return
		case *h2.RSTStreamFrame:
			if f.StreamID == pendingStream {
				pendingHeaders = nil
				pendingStream = 0
			}
		case *h2.DataFrame, *h2.WindowUpdateFrame, *h2.PriorityFrame:
			// Request bodies, flow-control credit and priority advice
			// are all ignored: every request gets the same response.
		case *h2.PushPromiseFrame:
			// Clients must not push.
			goaway := h2.NewGoawayFrame(lastStream, h2.ErrCodeProtocol, []byte("PUSH_PROMISE from client"))
			if _, werr := h2.WriteFrame(conn, goaway, egress); werr == nil {
				tap.Publish("send", goaway)
			}
			return
		}
	}
}

// applyPeerSettings applies the parameters that concern the codec. The
// peer's header table size bounds our encoder's dynamic table.
func applyPeerSettings(peer h2.Settings, egress *h2.HeaderTable) {
	if v, ok := peer.Value(h2.SettingHeaderTableSize); ok {
		egress.SetCapacity(v)
	}
}

// respond serves the configured body on streamID as HEADERS plus DATA,
// chunking the body so no frame exceeds the peer's max frame size.
func respond(w io.Writer, egress *h2.HeaderTable, tap *FrameTap, conf Config, streamID uint32, reqHeaders []hpack.HeaderField, peerMaxFrame uint32, remote string) error {
	method, path := "?", "?"
	for _, hf := range reqHeaders {
		switch hf.Name {
		case ":method":
			method = hf.Value
		case ":path":
			path = hf.Value
		}
	}
	RequestLog(method, path, remote)

	body := []byte(conf.Server.Content)
	encoding := conf.Server.Encoding
	encoded, err := EncodeBody(body, encoding)
	if err != nil {
		ErrorLog(err)
		encoding = "none"
	} else {
		body = encoded
	}

	fields := []hpack.HeaderField{
		{Name: ":status", Value: "200"},
		{Name: "content-type", Value: conf.Server.ContentType},
		{Name: "content-length", Value: strconv.Itoa(len(body))},
	}
	if encoding != "none" && encoding != "" {
		fields = append(fields, hpack.HeaderField{Name: "content-encoding", Value: encoding})
	}
	if conf.Server.ShowServerVersion {
		fields = append(fields, hpack.HeaderField{Name: "server", Value: "h2wire/" + VERSION})
	}

	hf := h2.NewHeadersFrame(streamID, fields, 0)
	hf.SetEndHeaders()
	if _, err := h2.WriteFrame(w, hf, egress); err != nil {
		return err
	}
	tap.Publish("send", hf)

	for {
		chunk := body
		if uint32(len(chunk)) > peerMaxFrame {
			chunk = chunk[:peerMaxFrame]
		}
		body = body[len(chunk):]

		df := h2.NewDataFrame(streamID, chunk, 0)
		if len(body) == 0 {
			df.SetEndStream()
		}
		if _, err := h2.WriteFrame(w, df, egress); err != nil {
			return err
		}
		tap.Publish("send", df)
		if len(body) == 0 {
			return nil
		}
	}
}
