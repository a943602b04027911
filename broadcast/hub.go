package broadcast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/lixenwraith/beat-runner/engine"
	"github.com/lixenwraith/beat-runner/event"
	"github.com/lixenwraith/beat-runner/status"
)

var ErrServerRunning = errors.New("spectator server already running")

// client is one connected spectator
// send is closed by the hub when the client is removed
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans frame snapshots and game events out to websocket spectators
// Publishing never blocks the frame loop: a client whose queue is full is dropped
type Hub struct {
	cfg      Config
	logger   *log.Logger
	metrics  *status.Registry
	upgrader websocket.Upgrader

	mu        sync.Mutex
	clients   map[*client]struct{}
	latest    []byte
	lastFrame time.Duration
	sentFrame bool

	server *http.Server

	mClients *atomic.Int64
	mDropped *atomic.Int64
}

// NewHub creates a hub; logger and reg may be nil
func NewHub(cfg Config, logger *log.Logger, reg *status.Registry) *Hub {
	if logger == nil {
		logger = log.Default()
	}
	if reg == nil {
		reg = status.NewRegistry()
	}
	if cfg.SendBuffer < 1 {
		cfg.SendBuffer = 1
	}
	return &Hub{
		cfg:     cfg,
		logger:  logger,
		metrics: reg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Spectators are read-only
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:  make(map[*client]struct{}),
		mClients: reg.Ints.Get(status.KeySpectators),
		mDropped: reg.Ints.Get(status.KeySpectatorDrops),
	}
}

// Handler returns the HTTP routes: /ws for spectators, /metrics and /health
// /metrics?component=spawn narrows the snapshot to one component's keys
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	mux.HandleFunc("/metrics", func(w http.ResponseWriter, r *http.Request) {
		snap := h.metrics.SnapshotComponent(r.URL.Query().Get("component"))
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(snap); err != nil {
			h.logger.Printf("spectator: encode metrics: %v", err)
		}
	})
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})
	return mux
}

// Start listens on the configured address and serves in the background
// Returns the bound address, which differs from the config when the port is 0
func (h *Hub) Start() (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.server != nil {
		return "", ErrServerRunning
	}
	ln, err := net.Listen("tcp", h.cfg.Addr)
	if err != nil {
		return "", fmt.Errorf("spectator listen: %w", err)
	}
	srv := &http.Server{Handler: h.Handler(), ReadHeaderTimeout: 5 * time.Second}
	h.server = srv

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Printf("spectator: serve: %v", err)
		}
	}()
	h.logger.Printf("spectator: listening on %s", ln.Addr())
	return ln.Addr().String(), nil
}

// Shutdown stops the server and disconnects every spectator
func (h *Hub) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	srv := h.server
	h.server = nil
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// ServeWS upgrades a spectator connection and streams until it closes
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("spectator: upgrade failed for %s: %v", r.RemoteAddr, err)
		return
	}

	c := &client{conn: conn, send: make(chan []byte, h.cfg.SendBuffer)}
	h.add(c)
	go h.writePump(c)

	// Inbound messages are ignored; reading surfaces the close
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[c] = struct{}{}
	if h.latest != nil {
		c.send <- h.latest
	}
	h.mClients.Store(int64(len(h.clients)))
}

// remove unregisters c and closes its queue; safe to call more than once
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
		h.mClients.Store(int64(len(h.clients)))
	}
	h.mu.Unlock()

	if ok && c.conn != nil {
		c.conn.Close()
	}
}

func (h *Hub) writePump(c *client) {
	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Printf("spectator: write to %s: %v", c.conn.RemoteAddr(), err)
			h.remove(c)
			return
		}
	}
	c.conn.SetWriteDeadline(time.Now().Add(h.cfg.WriteTimeout))
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}

// Clients returns the number of connected spectators
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// FrameDue reports whether a snapshot taken at session time at would be sent
// False with no spectators so callers can skip building the snapshot
func (h *Hub) FrameDue(at time.Duration) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients) > 0 && h.dueLocked(at)
}

func (h *Hub) dueLocked(at time.Duration) bool {
	// A clock behind the last frame means the session restarted
	return !h.sentFrame || at < h.lastFrame || at-h.lastFrame >= h.cfg.SnapshotInterval
}

// PublishFrame sends snap to every spectator unless one went out within SnapshotInterval
// The latest frame is kept for spectators that join later
func (h *Hub) PublishFrame(snap engine.FrameSnapshot) {
	h.mu.Lock()
	due := h.dueLocked(snap.At)
	h.mu.Unlock()
	if !due {
		return
	}

	data, err := json.Marshal(Message{Type: TypeFrame, Frame: &snap})
	if err != nil {
		h.logger.Printf("spectator: marshal frame %d: %v", snap.Frame, err)
		return
	}

	h.mu.Lock()
	h.latest = data
	h.lastFrame = snap.At
	h.sentFrame = true
	h.mu.Unlock()
	h.broadcast(data)
}

// PublishEvent sends ev to every spectator; shaped to be an engine subscriber
func (h *Hub) PublishEvent(ev event.GameEvent) {
	if h.Clients() == 0 {
		return
	}
	data, err := json.Marshal(eventMessage(ev))
	if err != nil {
		h.logger.Printf("spectator: marshal %s event: %v", ev.Type, err)
		return
	}
	h.broadcast(data)
}

// broadcast queues data on every client without blocking
func (h *Hub) broadcast(data []byte) {
	var slow []*client

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			slow = append(slow, c)
		}
	}
	h.mu.Unlock()

	for _, c := range slow {
		h.mDropped.Add(1)
		if c.conn != nil {
			h.logger.Printf("spectator: dropping slow client %s", c.conn.RemoteAddr())
		}
		h.remove(c)
	}
}
