package services

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// PongWait bounds how long a connection may go without a pong before
// its reader gives up. Readers set their deadlines from it so it stays
// in step with the ping interval here.
const PongWait = 60 * time.Second

const (
	writeWait      = 10 * time.Second
	pingPeriod     = (PongWait * 9) / 10
	sendBufferSize = 64
)

// Event is the wire frame exchanged over the websocket in both
// directions.
type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Client is one live websocket connection. The write pump is the only
// goroutine that writes to Conn.
type Client struct {
	ConnID string
	UserID uint
	Conn   *websocket.Conn
	Send   chan []byte

	closeOnce sync.Once
}

func NewClient(connID string, userID uint, conn *websocket.Conn) *Client {
	return &Client{
		ConnID: connID,
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// Enqueue hands an event to the client's write pump. A client whose
// buffer is full has the event dropped rather than stalling the caller.
func (c *Client) Enqueue(ev Event) bool {
	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("hub: failed to marshal %s event: %v", ev.Event, err)
		return false
	}
	select {
	case c.Send <- payload:
		return true
	default:
		log.Printf("hub: dropping %s event for slow connection %s", ev.Event, c.ConnID)
		return false
	}
}

// Close releases the send channel. Idempotent.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.Send)
	})
}

// WritePump drains the send channel onto the socket and keeps the
// connection alive with pings. It exits when Close is called or a
// write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Hub fans events out to the connections the presence registry reports
// for a room. It is best effort: only connections live at the moment of
// the call receive the event, and a room with no live connections is a
// successful no-op.
type Hub struct {
	presence *Presence

	mu      sync.RWMutex
	clients map[string]*Client
}

func NewHub(presence *Presence) *Hub {
	return &Hub{
		presence: presence,
		clients:  make(map[string]*Client),
	}
}

// Attach makes a client reachable for fan-out under its connection id.
func (h *Hub) Attach(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ConnID] = c
}

// Detach removes the client and closes its send channel. Safe to call
// for an unknown connection id.
func (h *Hub) Detach(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// Closing under the lock keeps Publish, which sends while holding
	// the read lock, from racing a send against the close.
	if c, ok := h.clients[connID]; ok {
		delete(h.clients, connID)
		c.Close()
	}
}

// Publish delivers the event to every connection currently registered
// in the room. Fan-out across connections is unordered; events pushed
// to one connection stay in publish order because each client has a
// single write pump.
func (h *Hub) Publish(room string, ev Event) {
	connIDs := h.presence.ConnectionsIn(room)
	if len(connIDs) == 0 {
		return
	}

	payload, err := json.Marshal(ev)
	if err != nil {
		log.Printf("hub: failed to marshal %s event: %v", ev.Event, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, connID := range connIDs {
		c, ok := h.clients[connID]
		if !ok {
			continue
		}
		select {
		case c.Send <- payload:
		default:
			log.Printf("hub: dropping %s event for slow connection %s", ev.Event, connID)
		}
	}
}
