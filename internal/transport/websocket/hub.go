// Package websocket serves frame snapshots to browsers and feeds their key
// presses back to the loop.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pkg/errors"

	"github.com/zeusync/trackrun/internal/core/loop"
	"github.com/zeusync/trackrun/internal/core/observability/log"
	"github.com/zeusync/trackrun/internal/core/scene"
	"github.com/zeusync/trackrun/internal/host"
)

var ErrHubClosed = errors.New("hub is closed")

type Config struct {
	Scene        string
	Keys         []string
	SendBuffer   int
	InputBuffer  int
	WriteTimeout time.Duration
	PingInterval time.Duration
	ReadLimit    int64
}

func (c *Config) setDefaults() {
	if c.SendBuffer < 2 {
		c.SendBuffer = 16
	}
	if c.InputBuffer <= 0 {
		c.InputBuffer = 64
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = 5 * time.Second
	}
	if c.PingInterval <= 0 {
		c.PingInterval = 30 * time.Second
	}
	if c.ReadLimit <= 0 {
		c.ReadLimit = 4096
	}
}

type client struct {
	id        string
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

// Hub is both a loop.Renderer and a loop.Notifier. Render and Notify never
// block on a slow client: a client whose buffer is full is dropped.
type Hub struct {
	cfg      Config
	logger   log.Log
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*client
	last    []byte
	closed  bool

	keys    chan string
	resizes chan host.Size

	dropped atomic.Uint64
}

var (
	_ loop.Renderer = (*Hub)(nil)
	_ loop.Notifier = (*Hub)(nil)
)

func NewHub(cfg Config, logger log.Log) *Hub {
	cfg.setDefaults()
	if logger == nil {
		logger = log.Provide()
	}
	return &Hub{
		cfg:    cfg,
		logger: logger.Named("websocket"),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients: make(map[string]*client),
		keys:    make(chan string, cfg.InputBuffer),
		resizes: make(chan host.Size, cfg.InputBuffer),
	}
}

// Inputs exposes client key presses and resizes to a host.
func (h *Hub) Inputs() host.Inputs {
	return host.Inputs{Keys: h.keys, Resizes: h.resizes}
}

func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped counts clients disconnected for falling behind or failing writes.
func (h *Hub) Dropped() uint64 { return h.dropped.Load() }

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", log.String("remote_addr", r.RemoteAddr), log.Error(err))
		return
	}
	conn.SetReadLimit(h.cfg.ReadLimit)

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, h.cfg.SendBuffer),
		done: make(chan struct{}),
	}

	hello, err := encode(TypeHello, Hello{ClientID: c.id, Scene: h.cfg.Scene, Keys: h.cfg.Keys})
	if err != nil {
		h.logger.Error("encode hello", log.Error(err))
		c.close()
		return
	}
	c.send <- hello

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		c.close()
		return
	}
	if h.last != nil {
		c.send <- h.last
	}
	h.clients[c.id] = c
	h.mu.Unlock()

	logger := h.logger.With(log.String("client_id", c.id), log.String("remote_addr", conn.RemoteAddr().String()))
	logger.Info("client connected")

	go h.writePump(c, logger)
	h.readPump(c, logger)

	h.remove(c)
	logger.Info("client disconnected")
}

func (h *Hub) readPump(c *client, logger log.Log) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("read failed", log.Error(err))
			}
			return
		}
		msg, err := decodeInbound(data)
		if err != nil {
			logger.Debug("ignoring message", log.Error(err))
			continue
		}
		switch {
		case msg.key != "":
			select {
			case h.keys <- msg.key:
			case <-c.done:
				return
			}
		case msg.resize != nil:
			select {
			case h.resizes <- *msg.resize:
			case <-c.done:
				return
			}
		}
	}
}

func (h *Hub) writePump(c *client, logger log.Log) {
	ping := time.NewTicker(h.cfg.PingInterval)
	defer ping.Stop()
	defer c.close()

	for {
		select {
		case <-c.done:
			return
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				h.dropped.Add(1)
				logger.Warn("write failed, dropping client", log.Error(err))
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(h.cfg.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				h.dropped.Add(1)
				logger.Warn("ping failed, dropping client", log.Error(err))
				return
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c.id)
	h.mu.Unlock()
	c.close()
}

func (h *Hub) broadcast(data []byte) {
	h.mu.RLock()
	var slow []*client
	for _, c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.RUnlock()

	for _, c := range slow {
		h.dropped.Add(1)
		h.logger.Warn("client too slow, dropping", log.String("client_id", c.id))
		h.remove(c)
	}
}

func (h *Hub) Render(_ context.Context, snap scene.Snapshot) error {
	data, err := encodeSnapshot(snap)
	if err != nil {
		return err
	}
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return ErrHubClosed
	}
	h.last = data
	h.mu.Unlock()

	h.broadcast(data)
	return nil
}

func (h *Hub) Notify(_ context.Context, ev loop.CollisionEvent) {
	data, err := encodeCollision(ev)
	if err != nil {
		h.logger.Error("encode collision", log.Error(err))
		return
	}
	h.broadcast(data)
}

// Close disconnects every client. Later renders fail with ErrHubClosed.
func (h *Hub) Close() error {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[string]*client)
	h.mu.Unlock()

	for _, c := range clients {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.close()
	}
	return nil
}
