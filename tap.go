package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"h2wire/h2"
)

// FrameTap streams a JSON line per frame the gateway reads or writes to
// any connected websocket, for watching a connection live. A nil tap is
// valid and publishes nothing.
type FrameTap struct {
	mu    sync.Mutex
	conns map[*websocket.Conn]struct{}

	upgrader websocket.Upgrader
}

func StartFrameTap(listen string) *FrameTap {
	t := &FrameTap{
		conns: make(map[*websocket.Conn]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/frames", t.handleFrames)
	go func() {
		if err := http.ListenAndServe(listen, mux); err != nil {
			ErrorLog(err)
		}
	}()
	return t
}

func (t *FrameTap) handleFrames(w http.ResponseWriter, r *http.Request) {
	ws, err := t.upgrader.Upgrade(w, r, nil)
	if err != nil {
		ErrorLog(err)
		return
	}
	t.mu.Lock()
	t.conns[ws] = struct{}{}
	t.mu.Unlock()
}

type tapEvent struct {
	Dir      string `json:"dir"`
	Type     string `json:"type"`
	StreamID uint32 `json:"stream"`
	Length   uint32 `json:"length"`
	Flags    uint8  `json:"flags"`
}

// Publish fans one frame header summary out to every watcher. Watchers
// that stall or hang up are dropped.
func (t *FrameTap) Publish(dir string, f h2.Frame) {
	if t == nil {
		return
	}
	h := f.Header()
	b, _ := json.Marshal(tapEvent{
		Dir:      dir,
		Type:     h.Type.String(),
		StreamID: h.StreamID,
		Length:   h.Length,
		Flags:    uint8(h.Flags),
	})

	t.mu.Lock()
	defer t.mu.Unlock()
	for ws := range t.conns {
		ws.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := ws.WriteMessage(websocket.TextMessage, b); err != nil {
			ws.Close()
			delete(t.conns, ws)
		}
	}
}
