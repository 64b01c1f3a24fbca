package stream

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"bountyvault/internal/bootstrap/logging"
	"bountyvault/internal/errs"
	"bountyvault/internal/infrastructure/messaging"
	"bountyvault/internal/ports"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 64
)

type client struct {
	id    string
	vault string
	conn  *websocket.Conn
	send  chan messaging.Envelope
}

// Hub streams committed ledger events to websocket subscribers. A subscriber
// that cannot keep up is dropped rather than slowing down publishers.
type Hub struct {
	mu       sync.RWMutex
	clients  map[*client]struct{}
	upgrader websocket.Upgrader
}

var _ ports.EventPublisher = (*Hub)(nil)

func NewHub() *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Publish(_ context.Context, event ports.LedgerEvent) error {
	envelope := messaging.NewEnvelope(event)

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		if c.vault != "" && c.vault != envelope.Vault {
			continue
		}
		select {
		case c.send <- envelope:
		default:
			delete(h.clients, c)
			close(c.send)
		}
	}
	return nil
}

// ServeWS upgrades the request and streams events until the peer leaves.
// The optional "vault" query parameter restricts the stream to one vault.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := logging.WithComponent(r.Context(), "stream.hub")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn(ctx, "websocket upgrade failed", slog.Any("err", errs.Loggable(err)))
		return
	}

	c := &client{
		id:    uuid.NewString(),
		vault: r.URL.Query().Get("vault"),
		conn:  conn,
		send:  make(chan messaging.Envelope, sendBuffer),
	}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	logging.Info(ctx, "stream subscriber joined", slog.String("client_id", c.id), slog.String("vault", c.vault))

	go h.writePump(c)
	h.readPump(c)

	logging.Info(ctx, "stream subscriber left", slog.String("client_id", c.id))
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// readPump only services control frames; subscribers never send data.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case envelope, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(envelope); err != nil {
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

// Close disconnects every subscriber.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		delete(h.clients, c)
		close(c.send)
	}
}
