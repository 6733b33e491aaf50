package api

import (
	"encoding/json"
	"sync"

	"github.com/gofiber/websocket/v2"
	"github.com/pynezz/pynezzentials/ansi"
)

// Feed pushes every completed assessment to connected websocket
// clients. Slow or gone clients are dropped, never waited on.
type Feed struct {
	mu   sync.Mutex
	subs map[*websocket.Conn]struct{}
}

func NewFeed() *Feed {
	return &Feed{subs: make(map[*websocket.Conn]struct{})}
}

// Publish broadcasts v as JSON to every subscriber.
func (f *Feed) Publish(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		ansi.PrintError("Feed marshal failed: " + err.Error())
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	for conn := range f.subs {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			delete(f.subs, conn)
			conn.Close()
		}
	}
}

// handle registers a websocket connection and holds it open until the
// client goes away. Inbound messages are ignored; the feed is one-way.
func (f *Feed) handle(c *websocket.Conn) {
	ansi.PrintDebug("WebSocket subscriber connected")

	f.mu.Lock()
	f.subs[c] = struct{}{}
	f.mu.Unlock()

	for {
		if _, _, err := c.ReadMessage(); err != nil {
			break
		}
	}

	f.mu.Lock()
	delete(f.subs, c)
	f.mu.Unlock()
	c.Close()
}
