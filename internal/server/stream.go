package server

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/san-kum/orrery/internal/scene"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 25 * time.Second
	sendBuffer = 8
	readLimit  = 1 << 12
)

// Message is one frame on the snapshot stream.
type Message struct {
	Type     string          `json:"type"`
	Snapshot *scene.Snapshot `json:"snapshot,omitempty"`
	Speed    float64         `json:"speed,omitempty"`
	Error    string          `json:"error,omitempty"`
}

// ClientMessage is what a stream client may send back.
type ClientMessage struct {
	Command string   `json:"command,omitempty"`
	Speed   *float64 `json:"speed,omitempty"`
}

type client struct {
	conn *websocket.Conn
	ip   string
	send chan []byte
	once sync.Once
}

func (c *client) close() {
	c.once.Do(func() { close(c.send) })
}

// hub fans encoded frames out to every connected client. Slow clients miss
// frames rather than stall the ticker.
type hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

func newHub() *hub {
	return &hub{clients: make(map[*client]struct{})}
}

func (h *hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
}

func (h *hub) remove(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	delete(h.clients, c)
	c.close()
	return true
}

func (h *hub) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast returns how many clients dropped the frame.
func (h *hub) broadcast(b []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	dropped := 0
	for c := range h.clients {
		select {
		case c.send <- b:
		default:
			dropped++
		}
	}
	return dropped
}

// closeAll closes every client and returns how many were removed. Their
// later remove calls report false.
func (h *hub) closeAll() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := len(h.clients)
	for c := range h.clients {
		delete(h.clients, c)
		c.close()
	}
	return n
}

func encodeSnapshot(s scene.Snapshot, speed float64) ([]byte, error) {
	return json.Marshal(Message{Type: "snapshot", Snapshot: &s, Speed: speed})
}

// writePump owns all writes to the connection.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump decodes client messages until the connection fails.
func (c *client) readPump(handle func(*client, ClientMessage)) {
	c.conn.SetReadLimit(readLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		handle(c, msg)
	}
}

// sendTo queues b for one client if it is still connected. Full buffers
// drop it.
func (h *hub) sendTo(c *client, b []byte) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- b:
		return true
	default:
		return false
	}
}
