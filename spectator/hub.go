// Package spectator provides an optional, read-only HTTP and WebSocket
// dashboard onto the running server: a snapshot of registered teams and
// admitted players, a per-team shared-graph snapshot, and a live feed of
// move/challenge events. It is never part of the wire protocol and is
// disabled unless the server is started with --spectator-addr: nothing
// in the core game loop ever blocks on it.
package spectator

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/inconshreveable/log15/v3"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Event is one JSON message pushed to every connected spectator: a move,
// a challenge, or a round-start notice.
type Event struct {
	Kind string      `json:"kind"`
	Team string      `json:"team,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// client is one spectator's WebSocket connection.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans Event values out to every connected spectator over Go
// channels — a fourth, lock-free concurrency path kept entirely
// independent of the core client/server lock ordering.
type Hub struct {
	log        log15.Logger
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
}

// NewHub returns a Hub; callers must start it with go hub.Run().
func NewHub(log log15.Logger) *Hub {
	return &Hub{
		log:        log,
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 64),
		register:   make(chan *client),
		unregister: make(chan *client),
	}
}

// Run is the hub's event loop; it owns the clients map exclusively.
func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.clients[c] = true
		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
		case data := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- data:
				default:
					// Slow spectator: drop it rather than block the hub.
					delete(h.clients, c)
					close(c.send)
				}
			}
		}
	}
}

// Publish fire-and-forgets an event to every connected spectator. It
// never blocks the caller: a full broadcast buffer silently drops the
// event, since the dashboard is observability only.
func (h *Hub) Publish(e Event) {
	data, err := json.Marshal(e)
	if err != nil {
		h.log.Warn("spectator: failed to marshal event", "err", err)
		return
	}
	select {
	case h.broadcast <- data:
	default:
		h.log.Debug("spectator: broadcast buffer full, dropping event", "kind", e.Kind)
	}
}

// ServeWS upgrades r to a WebSocket and streams the live event feed.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("spectator: websocket upgrade failed", "err", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 64)}
	h.register <- c

	go c.writePump()
	go c.readPump(h)
}

func (c *client) readPump(h *Hub) {
	defer func() {
		h.unregister <- c
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
