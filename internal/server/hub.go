// Package server pushes history changes to UI clients over a local
// WebSocket. One-way and best-effort: clients that fall behind are
// dropped, commands go through the D-Bus surface instead.
package server

import (
	"encoding/json"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dooshek/clipd/internal/logger"
	"github.com/dooshek/clipd/internal/store"
)

const clientBuffer = 8

// Event is the message pushed to every connected client
type Event struct {
	Type      string        `json:"type"`
	History   []store.Entry `json:"history"`
	Timestamp int64         `json:"timestamp"`
}

// Hub accepts WebSocket subscribers on /events and fans the store's
// history broadcasts out to them
type Hub struct {
	store    *store.Store
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}

	listener    net.Listener
	httpServer  *http.Server
	unsubscribe func()
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewHub creates a hub around the shared store
func NewHub(st *store.Store) *Hub {
	return &Hub{
		store: st,
		upgrader: websocket.Upgrader{
			// Local UI shell only; the listener is bound to loopback
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// Start binds the listener and begins forwarding store broadcasts
func (h *Hub) Start(address string) error {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	h.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/events", h.handleEvents)

	h.httpServer = &http.Server{Handler: mux}

	updates, cancel := h.store.Subscribe()
	h.unsubscribe = cancel
	go func() {
		for history := range updates {
			h.broadcast(history)
		}
	}()

	go func() {
		if err := h.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			logger.Error("WebSocket server failed", err)
		}
	}()

	logger.Infof("🔔 Notification endpoint listening on ws://%s/events", h.Addr())
	return nil
}

// Addr returns the bound listener address
func (h *Hub) Addr() string {
	if h.listener == nil {
		return ""
	}
	return h.listener.Addr().String()
}

// Stop closes the listener and every client connection
func (h *Hub) Stop() {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	if h.httpServer != nil {
		h.httpServer.Close()
	}

	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
}

func (h *Hub) handleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Debugf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	logger.Debugf("WebSocket client connected (%d total)", h.clientCount())

	// New subscribers immediately receive the current history
	if payload, ok := encodeEvent(h.store.History()); ok {
		c.send <- payload
	}

	go h.writeLoop(c)
	go h.readLoop(c)
}

// writeLoop drains the client's send channel; it ends when the channel
// closes or the connection breaks
func (h *Hub) writeLoop(c *client) {
	defer c.conn.Close()

	for payload := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.drop(c)
			return
		}
	}
}

// readLoop discards anything the client sends and detects disconnects
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
}

// broadcast fans a history snapshot out to every client. A client whose
// buffer is full is dropped rather than allowed to block the store.
func (h *Hub) broadcast(history []store.Entry) {
	payload, ok := encodeEvent(history)
	if !ok {
		return
	}

	h.mu.Lock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			delete(h.clients, c)
			close(c.send)
			logger.Debug("Dropped slow WebSocket client")
		}
	}
	h.mu.Unlock()
}

func (h *Hub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func encodeEvent(history []store.Entry) ([]byte, bool) {
	payload, err := json.Marshal(Event{
		Type:      "clipboard-changed",
		History:   history,
		Timestamp: time.Now().UnixMilli(),
	})
	if err != nil {
		logger.Error("Failed to encode history event", err)
		return nil, false
	}
	return payload, true
}
