// Package leaguestream pushes league snapshots to websocket clients.
package leaguestream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 16
)

// SnapshotType tags every frame the hub sends.
const SnapshotType = "league.snapshot"

// Frame is the websocket payload.
type Frame struct {
	Type   string              `json:"type"`
	League leaguedomain.League `json:"league"`
}

// Source supplies the initial snapshot and the stream of later ones.
type Source interface {
	Read(ctx context.Context) (leaguedomain.League, error)
	Subscribe(ctx context.Context, onChange func(leaguedomain.League)) (func(), error)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshots out to every connected client. Slow clients are dropped.
type Hub struct {
	source   Source
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates a hub. An empty allowedOrigins accepts any origin.
func NewHub(source Source, allowedOrigins []string, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		source: source,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowedOrigins) == 0 || origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
		clients: make(map[*client]struct{}),
	}
}

// Start subscribes to store changes. The returned stop func unsubscribes and
// disconnects every client.
func (h *Hub) Start(ctx context.Context) (func(), error) {
	unsubscribe, err := h.source.Subscribe(ctx, h.Broadcast)
	if err != nil {
		return nil, err
	}
	return func() {
		unsubscribe()
		h.mu.Lock()
		for c := range h.clients {
			h.removeLocked(c)
		}
		h.mu.Unlock()
	}, nil
}

// Run forwards store changes to clients until ctx ends.
func (h *Hub) Run(ctx context.Context) error {
	stop, err := h.Start(ctx)
	if err != nil {
		return err
	}
	<-ctx.Done()
	stop()
	return nil
}

// Broadcast sends l to every connected client.
func (h *Hub) Broadcast(l leaguedomain.League) {
	data, err := json.Marshal(Frame{Type: SnapshotType, League: l})
	if err != nil {
		h.logger.Error("Failed to encode league snapshot", slog.Any("error", err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("Dropping slow websocket client", slog.String("remote", c.conn.RemoteAddr().String()))
			h.removeLocked(c)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

// ServeHTTP upgrades the request and sends the current snapshot followed by every change.
// The client is registered before the snapshot is read so no change falls between the two.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Websocket upgrade failed", slog.Any("error", err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	if err := h.sendInitial(r.Context(), c); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to send league snapshot to websocket client", slog.Any("error", err))
		h.remove(c)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseInternalServerErr, "snapshot unavailable"),
			time.Now().Add(writeWait))
		conn.Close()
		return
	}

	go h.writePump(c)
	go h.readPump(c)
}

// sendInitial writes the snapshot straight to the connection. Changes broadcast
// meanwhile wait in c.send and follow it once the write pump starts.
func (h *Hub) sendInitial(ctx context.Context, c *client) error {
	l, err := h.source.Read(ctx)
	if err != nil {
		return err
	}
	data, err := json.Marshal(Frame{Type: SnapshotType, League: l})
	if err != nil {
		return err
	}
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// readPump only services control frames; clients never send data.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.logger.Debug("Websocket client closed", slog.Any("error", err))
			}
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
