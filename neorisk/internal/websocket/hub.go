// Package websocket pushes every recorded prediction to connected
// dashboard clients.
package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Krimson/neorisk-monitor/neorisk/internal/models"
)

const (
	sendBufferSize = 256
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
)

// Hub fans recorded entries out to websocket clients.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
}

// Client is one dashboard connection. A non-empty verdict restricts the
// feed to entries with that consensus.
type Client struct {
	hub     *Hub
	conn    *websocket.Conn
	send    chan []byte
	verdict models.Verdict
}

// Event is the JSON frame sent to clients.
type Event struct {
	Type  string              `json:"type"`
	Entry models.HistoryEntry `json:"entry"`
}

type message struct {
	consensus models.Verdict
	payload   []byte
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// the dashboard is served from a different origin in development
		return true
	},
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, sendBufferSize),
		done:       make(chan struct{}),
	}
}

// Run dispatches registrations and broadcasts until ctx is done, then
// closes every client.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.mu.Lock()
			for client := range h.clients {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("[INFO] [WS] Hub stopped")
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			h.mu.Unlock()
			log.Printf("[WS] Client registered: %p, verdict filter: %q", client, client.verdict)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mu.Unlock()
			log.Printf("[WS] Client unregistered: %p", client)

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if client.verdict != "" && client.verdict != msg.consensus {
					continue
				}
				select {
				case client.send <- msg.payload:
				default:
					// slow reader
					delete(h.clients, client)
					close(client.send)
				}
			}
			h.mu.Unlock()
		}
	}
}

// ClientCount is the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Consume implements recorder.Sink. It never blocks the recorder: when
// the broadcast queue is full the frame is dropped.
func (h *Hub) Consume(ctx context.Context, entry models.HistoryEntry) error {
	payload, err := json.Marshal(Event{Type: "prediction", Entry: entry})
	if err != nil {
		log.Printf("[ERROR] [WS] Failed to marshal entry %s: %v", entry.ID, err)
		return err
	}

	select {
	case h.broadcast <- message{consensus: entry.Consensus, payload: payload}:
	default:
		log.Printf("[WARN] [WS] Broadcast channel full, dropping entry %s", entry.ID)
	}
	return nil
}

// HandleWebSocket upgrades the request. The optional consensus query
// parameter ("Healthy" or "At Risk") filters the feed.
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	var verdict models.Verdict
	if raw := r.URL.Query().Get("consensus"); raw != "" {
		v, err := models.ParseVerdict(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		verdict = v
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ERROR] [WS] Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:     h,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		verdict: verdict,
	}

	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump drains client frames so control messages are processed.
func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ERROR] [WS] Read error: %v", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("[ERROR] [WS] Failed to write message: %v", err)
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
