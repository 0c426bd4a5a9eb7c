package api

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/nerrad567/venus-link/internal/infrastructure/logging"
	"github.com/nerrad567/venus-link/internal/venus"
)

const (
	// wsSendBufferSize is the per-client outbound queue. At one
	// snapshot per second a full buffer means the client has not
	// drained for minutes; it gets dropped rather than allowed to
	// accumulate stale frames.
	wsSendBufferSize = 256

	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second

	// pongWait is how long a client may go silent before the read
	// side gives up on it.
	pongWait = 60 * time.Second

	// pingPeriod must be shorter than pongWait so the peer has a
	// ping to answer before the deadline lands.
	pingPeriod = (pongWait * 9) / 10
)

const envelopeTypeSnapshot = "snapshot"

// Envelope frames every WebSocket message.
type Envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// snapshotPayload is the broadcast body: the full device state plus
// both fleet summaries, so a dashboard needs no follow-up requests.
type snapshotPayload struct {
	venus.DeviceState
	BatterySummary    venus.BatterySummary    `json:"battery_summary"`
	PvInverterSummary venus.PvInverterSummary `json:"pv_inverter_summary"`
}

// upgrader performs the HTTP to WebSocket handshake. All origins are
// accepted; the API is expected to sit behind the deployment's own
// perimeter.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// Hub tracks connected WebSocket clients and fans snapshots out to
// them.
type Hub struct {
	mu      sync.RWMutex
	clients map[*WSClient]struct{}
	logger  *logging.Logger
}

func newHub(logger *logging.Logger) *Hub {
	return &Hub{
		clients: make(map[*WSClient]struct{}),
		logger:  logger,
	}
}

// Register adds a client to the broadcast set.
func (h *Hub) Register(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

// Unregister removes a client and closes its send channel. Safe to
// call more than once for the same client.
func (h *Hub) Unregister(c *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
}

// Broadcast marshals the envelope once and queues it to every client.
// A client whose buffer is full is unregistered; one stalled consumer
// must not back the stream up for everyone else.
func (h *Hub) Broadcast(env Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		h.logger.Error("marshalling websocket broadcast", "error", err)
		return
	}

	h.mu.RLock()
	clients := make([]*WSClient, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		if !c.trySend(data) {
			h.logger.Warn("dropping slow websocket client", "remote", c.remote)
			h.Unregister(c)
		}
	}
}

// clientCount returns the number of connected clients.
func (h *Hub) clientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// closeAll disconnects every client during server shutdown.
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
}

// WSClient is one WebSocket subscriber.
type WSClient struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	readLimit int64
	remote    string
}

// trySend queues a message without blocking. The recover covers the
// race where Unregister closes the channel between the registry
// snapshot in Broadcast and this send.
func (c *WSClient) trySend(data []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// readPump discards inbound frames and tears the client down when the
// peer goes away. The stream is one-way; reads exist to service
// control frames and detect closure.
func (c *WSClient) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.readLimit)
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

// writePump drains the send channel onto the wire and keeps the
// connection alive with pings.
func (c *WSClient) writePump() {
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

// handleWS upgrades the connection and seeds the new client with an
// immediate snapshot so it renders without waiting a full interval.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.deps.Logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := &WSClient{
		hub:       s.hub,
		conn:      conn,
		send:      make(chan []byte, wsSendBufferSize),
		readLimit: int64(s.deps.Config.WebSocket.MaxMessageSize),
		remote:    conn.RemoteAddr().String(),
	}
	s.hub.Register(client)

	if data, err := json.Marshal(s.snapshotEnvelope()); err == nil {
		client.trySend(data)
	}

	go client.writePump()
	go client.readPump()

	s.deps.Logger.Debug("websocket client connected",
		"remote", client.remote,
		"clients", s.hub.clientCount(),
	)
}

// snapshotEnvelope composes the broadcast message from the live state.
func (s *Server) snapshotEnvelope() Envelope {
	return Envelope{
		Type: envelopeTypeSnapshot,
		Payload: snapshotPayload{
			DeviceState:       s.deps.Telemetry.Snapshot(),
			BatterySummary:    s.deps.Telemetry.BatterySummary(),
			PvInverterSummary: s.deps.Telemetry.PvInverterSummary(),
		},
	}
}

// broadcastSnapshot pushes the current snapshot to all clients.
func (s *Server) broadcastSnapshot() {
	if s.hub == nil {
		return
	}
	s.hub.Broadcast(s.snapshotEnvelope())
}
