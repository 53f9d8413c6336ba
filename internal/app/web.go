// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pointlessguy/Haptic-FOC-driven-Tactile-Knob/internal/knob"
)

// maxOpBody caps the size of a POSTed op envelope.
const maxOpBody = 4 << 10

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// presetInfo is one entry of /api/presets.
type presetInfo struct {
	Index    int           `json:"index"`
	Settings knob.Settings `json:"settings"`
	Active   bool          `json:"active"`
}

// replyBody is the JSON answer to an op, over HTTP or websocket.
type replyBody struct {
	knob.Reply
	Error string `json:"error,omitempty"`
}

// WebServer exposes the knob over HTTP and websocket.
//
//	GET  /api/settings  controller snapshot
//	GET  /api/presets   preset table
//	POST /api/ops       op envelope in, reply out
//	GET  /ws            event stream; op envelopes in, replies out
type WebServer struct {
	daemon *Daemon
	hub    *Hub
	logger *slog.Logger
}

func NewWebServer(d *Daemon, hub *Hub, logger *slog.Logger) *WebServer {
	return &WebServer{daemon: d, hub: hub, logger: logger.With("component", "web")}
}

// Handler returns the HTTP routes.
func (s *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/settings", s.handleSettings)
	mux.HandleFunc("GET /api/presets", s.handlePresets)
	mux.HandleFunc("POST /api/ops", s.handleOp)
	mux.HandleFunc("GET /ws", s.handleWS)
	return mux
}

// ListenAndServe serves on addr until ctx is canceled.
func (s *WebServer) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("web server listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *WebServer) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.daemon.Controller().Snapshot())
}

func (s *WebServer) handlePresets(w http.ResponseWriter, r *http.Request) {
	ctrl := s.daemon.Controller()
	active := ctrl.PresetIndex()
	presets := ctrl.Presets()

	out := make([]presetInfo, len(presets))
	for i, p := range presets {
		out[i] = presetInfo{Index: i, Settings: p, Active: i == active}
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *WebServer) handleOp(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxOpBody))
	if err != nil {
		http.Error(w, "read body: "+err.Error(), http.StatusBadRequest)
		return
	}
	reply, err := s.daemon.HandleCommand(body)
	s.writeJSON(w, statusForOpError(err), newReplyBody(reply, err))
}

func (s *WebServer) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	client := newWSClient(s.hub, conn, r.RemoteAddr, func(msg []byte) []byte {
		reply, err := s.daemon.HandleCommand(msg)
		b, mErr := marshalWS(wsTypeReply, newReplyBody(reply, err))
		if mErr != nil {
			s.logger.Warn("marshal reply failed", "error", mErr)
			return nil
		}
		return b
	})

	// Queue the snapshot before registering so it is the first frame.
	if initMsg, err := marshalWS(wsTypeStateInit, s.daemon.Controller().Snapshot()); err == nil {
		client.trySend(initMsg)
	}
	s.hub.register <- client

	// Pumps outlive the request; the hub and socket errors end them.
	go client.writePump()
	go client.readPump()
}

func newReplyBody(r knob.Reply, err error) replyBody {
	b := replyBody{Reply: r}
	if err != nil {
		b.Error = err.Error()
	}
	return b
}

// statusForOpError maps op errors to HTTP status codes.
func statusForOpError(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, knob.ErrInvalidOperation):
		return http.StatusConflict
	case errors.Is(err, knob.ErrOutOfRange), errors.Is(err, knob.ErrInvalidValue):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (s *WebServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("json encode error", "error", err)
	}
}
