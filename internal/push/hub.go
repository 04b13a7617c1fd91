package push

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// Message types exchanged with client windows.
const (
	MessageFocus       = "focus"
	MessageInteraction = "interaction"
)

// Envelope wraps all websocket messages.
type Envelope struct {
	Type      string `json:"type"`
	URL       string `json:"url,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

const (
	pongWait   = 60 * time.Second
	pingPeriod = 30 * time.Second
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type wsClient struct {
	id              string
	conn            *websocket.Conn
	send            chan []byte
	hub             *Hub
	connectedAt     time.Time
	lastInteraction time.Time
}

// Hub tracks connected client windows.
type Hub struct {
	log zerolog.Logger
	now func() time.Time

	mu      sync.Mutex
	clients map[string]*wsClient
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		log:     log,
		now:     time.Now,
		clients: make(map[string]*wsClient),
	}
}

// Count returns the number of connected clients.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Focus sends a focus event to the client with the latest interaction.
func (h *Hub) Focus(url string) (string, error) {
	msg, err := json.Marshal(Envelope{Type: MessageFocus, URL: url, Timestamp: h.now().Unix()})
	if err != nil {
		return "", err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	target := h.mostRecentLocked()
	if target == nil {
		return "", ErrNoClient
	}

	select {
	case target.send <- msg:
		target.lastInteraction = h.now()
		return target.id, nil
	default:
		return "", fmt.Errorf("client %s send buffer is full", target.id)
	}
}

func (h *Hub) mostRecentLocked() *wsClient {
	var best *wsClient
	for _, c := range h.clients {
		if best == nil ||
			c.lastInteraction.After(best.lastInteraction) ||
			(c.lastInteraction.Equal(best.lastInteraction) && c.connectedAt.After(best.connectedAt)) {
			best = c
		}
	}
	return best
}

func (h *Hub) register(c *wsClient) {
	h.mu.Lock()
	h.clients[c.id] = c
	n := len(h.clients)
	h.mu.Unlock()
	connectedClients.Set(float64(n))
	h.log.Info().Str("client_id", c.id).Int("total", n).Msg("client connected")
}

func (h *Hub) unregister(c *wsClient) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	connectedClients.Set(float64(n))
	h.log.Info().Str("client_id", c.id).Int("total", n).Msg("client disconnected")
}

func (h *Hub) touch(c *wsClient) {
	h.mu.Lock()
	c.lastInteraction = h.now()
	h.mu.Unlock()
}

// ServeWS upgrades the request and registers the connection as a client.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn().Err(err).Msg("failed to upgrade")
		return
	}

	now := h.now()
	c := &wsClient{
		id:              uuid.NewString(),
		conn:            conn,
		send:            make(chan []byte, sendBuffer),
		hub:             h,
		connectedAt:     now,
		lastInteraction: now,
	}
	h.register(c)

	go c.writePump()
	go c.readPump()
}

func (c *wsClient) readPump() {
	defer func() {
		c.hub.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn().Err(err).Str("client_id", c.id).Msg("read error")
			}
			return
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			c.hub.log.Debug().Err(err).Msg("invalid message format")
			continue
		}

		if env.Type == MessageInteraction {
			c.hub.touch(c)
		}
	}
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
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
