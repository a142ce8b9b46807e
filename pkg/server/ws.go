package server

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/taikoxyz/shadow/pkg/queue"
)

// WebSocket timeouts, named the way the gorilla chatroom example does
// (writeWait/pongWait/pingPeriod), sized for a long-lived status feed
// rather than a chat session.
const (
	wsWriteWait = 10 * time.Second
	wsPongWait = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
	wsSendBuffer = 64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize: 1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub fans queue.Event notifications out to every connected push-channel
// subscriber.
type Hub struct {
	mu sync.RWMutex
	clients map[*wsClient]bool
	logger *log.Logger
}

// NewHub constructs an empty push-channel hub.
func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(log.Writer(), "[shadow-ws] ", log.LstdFlags)
	}
	return &Hub{clients: make(map[*wsClient]bool), logger: logger}
}

// Publish implements queue.Publisher: marshal ev once and fan it out,
// skipping (and logging) any subscriber whose send buffer is full; the
// subscriber stays connected and only misses this event.
func (h *Hub) Publish(ev queue.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.logger.Printf("marshaling event %s: %v", ev.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Printf("dropping event %s for a slow subscriber", ev.Type)
		}
	}
}

// ConnectionCount returns the number of currently connected subscribers.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *Hub) remove(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

type wsClient struct {
	hub *Hub
	conn *websocket.Conn
	send chan []byte
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Hub == nil {
		writeJSONError(w, "push channel not configured", http.StatusServiceUnavailable)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("ws upgrade: %v", err)
		return
	}

	client := &wsClient{hub: s.cfg.Hub, conn: conn, send: make(chan []byte, wsSendBuffer)}
	client.hub.add(client)

	go client.writePump()
	go client.readPump()
}

// readPump only needs to notice disconnects and the application-level ping
// text frame.
func (c *wsClient) readPump() {
	defer func() {
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(wsPongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if string(message) == "ping" {
			select {
			case c.send <- []byte("pong"):
			default:
			}
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
