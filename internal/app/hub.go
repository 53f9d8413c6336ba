// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Websocket message types beyond the daemon events.
const (
	wsTypeStateInit = "state_init"
	wsTypeReply     = "reply"
)

// wsEnvelope is the wire format of every websocket message.
type wsEnvelope struct {
	Type string     `json:"type"`
	Ts   *time.Time `json:"ts,omitempty"`
	Data any        `json:"data,omitempty"`
}

func marshalWS(typ string, data any) ([]byte, error) {
	now := time.Now().UTC()
	return json.Marshal(wsEnvelope{Type: typ, Ts: &now, Data: data})
}

const (
	writeWait  = 5 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 20 * time.Second

	clientSendBuf = 32
	broadcastBuf  = 128
)

// Hub tracks websocket clients and broadcasts daemon events to them. It is
// a Publisher; call Run to start it.
type Hub struct {
	logger *slog.Logger

	broadcast  chan []byte
	register   chan *wsClient
	unregister chan *wsClient

	mu      sync.Mutex
	clients map[*wsClient]struct{}
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger:     logger.With("component", "ws"),
		broadcast:  make(chan []byte, broadcastBuf),
		register:   make(chan *wsClient, 16),
		unregister: make(chan *wsClient, 16),
		clients:    make(map[*wsClient]struct{}),
	}
}

// Run processes hub events until ctx is canceled, then disconnects all
// clients.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client connected", "remote_addr", c.remoteAddr, "clients", n)

		case c := <-h.unregister:
			h.remove(c, "unregister")

		case msg := <-h.broadcast:
			var slow []*wsClient
			h.mu.Lock()
			for c := range h.clients {
				if !c.trySend(msg) {
					slow = append(slow, c)
				}
			}
			h.mu.Unlock()

			for _, c := range slow {
				h.remove(c, "slow_client")
			}
		}
	}
}

// ClientCount returns the number of registered clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Publish broadcasts ev to every client. It never blocks; when the queue is
// full the event is dropped.
func (h *Hub) Publish(ev Event) error {
	msg, err := marshalWS(ev.Type, ev.Data)
	if err != nil {
		return err
	}
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("broadcast queue full, dropping message", "type", ev.Type)
	}
	return nil
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		_ = c.conn.Close()
		c.closeSend()
		delete(h.clients, c)
	}
}

func (h *Hub) remove(c *wsClient, reason string) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		_ = c.conn.Close()
		c.closeSend()
		h.logger.Info("client disconnected", "remote_addr", c.remoteAddr, "reason", reason, "clients", n)
	}
}

// wsClient is one websocket connection. Incoming text frames are op
// envelopes; each gets a reply frame on the same connection.
type wsClient struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string
	handle     func([]byte) []byte

	mu     sync.Mutex // guards closed and sends on send
	closed bool
}

func newWSClient(hub *Hub, conn *websocket.Conn, remoteAddr string, handle func([]byte) []byte) *wsClient {
	return &wsClient{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, clientSendBuf),
		remoteAddr: remoteAddr,
		handle:     handle,
	}
}

func (c *wsClient) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// trySend queues msg without blocking. It reports false when the queue is
// full; a closed client silently drops msg.
func (c *wsClient) trySend(msg []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return true
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// enqueue queues msg for this client only. A full queue drops the client.
func (c *wsClient) enqueue(msg []byte) {
	if !c.trySend(msg) {
		c.hub.unregister <- c
	}
}

func closeStatus(err error) (code int, text string, ok bool) {
	var ce *websocket.CloseError
	if errors.As(err, &ce) {
		return ce.Code, ce.Text, true
	}
	return 0, "", false
}

func (c *wsClient) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					c.hub.logger.Info("write pump exiting", "remote_addr", c.remoteAddr, "error", err)
				}
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

func (c *wsClient) readPump() {
	defer func() { c.hub.unregister <- c }()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		typ, msg, err := c.conn.ReadMessage()
		if err != nil {
			if code, text, ok := closeStatus(err); ok {
				c.hub.logger.Info("read pump exiting (close)", "remote_addr", c.remoteAddr, "code", code, "reason", text)
			} else {
				c.hub.logger.Info("read pump exiting", "remote_addr", c.remoteAddr, "error", err)
			}
			return
		}
		if typ != websocket.TextMessage || c.handle == nil {
			continue
		}
		if reply := c.handle(msg); reply != nil {
			c.enqueue(reply)
		}
	}
}
