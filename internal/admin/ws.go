package admin

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"wildfire-sim/internal/alert"
	"wildfire-sim/internal/sensor"
)

const (
	clientBuffer = 32
	writeWait    = 5 * time.Second
	pingPeriod   = 30 * time.Second
)

// Hub streams every alert published on the bus to connected WebSocket
// clients as JSON. A client that falls behind is disconnected.
type Hub struct {
	upgrader    websocket.Upgrader
	log         *slog.Logger
	unsubscribe func()

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan sensor.Alert
	once sync.Once
}

func (c *client) stop() {
	c.once.Do(func() { close(c.send) })
}

// NewHub subscribes to bus.
func NewHub(bus *alert.Bus, log *slog.Logger) *Hub {
	h := &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		log:     log,
		clients: make(map[*client]struct{}),
	}
	h.unsubscribe = bus.Subscribe(h.broadcast)
	return h
}

func (h *Hub) broadcast(a sensor.Alert) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- a:
		default:
			h.log.Warn("websocket client too slow, disconnecting", "remote", c.conn.RemoteAddr().String())
			delete(h.clients, c)
			c.stop()
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan sensor.Alert, clientBuffer)}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.log.Info("websocket client connected", "remote", conn.RemoteAddr().String())

	go h.readLoop(c)
	h.writeLoop(c)
}

// readLoop discards client messages and notices disconnects.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		h.log.Info("websocket client disconnected", "remote", c.conn.RemoteAddr().String())
	}()
	for {
		select {
		case a, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteJSON(a); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
	c.stop()
}

// Close unsubscribes from the bus and disconnects every client.
func (h *Hub) Close() {
	h.unsubscribe()
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		delete(h.clients, c)
		c.stop()
	}
}
