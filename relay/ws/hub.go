// go-rfidgeek
// Copyright (c) 2025 The go-rfidgeek Contributors.
// SPDX-License-Identifier: LGPL-3.0-or-later
//
// This file is part of go-rfidgeek.
//
// go-rfidgeek is free software; you can redistribute it and/or
// modify it under the terms of the GNU Lesser General Public
// License as published by the Free Software Foundation; either
// version 3 of the License, or (at your option) any later version.
//
// go-rfidgeek is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with go-rfidgeek; if not, write to the Free Software Foundation,
// Inc., 51 Franklin Street, Fifth Floor, Boston, MA  02110-1301, USA.

// Package ws relays tag events over WebSocket. Client pushes events to a
// server; Hub is that server and rebroadcasts every message it receives to
// all connected clients.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rfidgeek/go-rfidgeek"
)

const (
	// Path is where the hub accepts WebSocket connections
	Path = "/ws"

	writeWait    = 5 * time.Second
	sendQueueLen = 16
)

type peer struct {
	conn *websocket.Conn
	send chan []byte
	once sync.Once
}

func (p *peer) close() {
	p.once.Do(func() {
		close(p.send)
	})
}

// Hub is a WebSocket broadcast server
type Hub struct {
	router   *mux.Router
	peers    map[*peer]struct{}
	upgrader websocket.Upgrader
	mu       sync.RWMutex
	closed   bool
}

// NewHub creates a hub with its routes registered
func NewHub() *Hub {
	h := &Hub{
		peers: make(map[*peer]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
	r := mux.NewRouter()
	r.HandleFunc(Path, h.serveWS).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.serveHealth).Methods(http.MethodGet)
	h.router = r
	return h
}

// Handler returns the hub's HTTP routes
func (h *Hub) Handler() http.Handler {
	return h.router
}

// ListenAndServe runs the hub on addr until ctx is cancelled
func (h *Hub) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Handler:           h.router,
		Addr:              addr,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("ws: hub listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("ws hub: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = h.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("ws hub shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("ws hub: %w", err)
	}
	return nil
}

// Broadcast queues msg for every connected client. Clients that fall
// behind lose the message.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for p := range h.peers {
		select {
		case p.send <- msg:
		default:
			log.Warn().Str("remote", p.conn.RemoteAddr().String()).Msg("ws: client too slow, dropping message")
		}
	}
}

// Forward makes the hub usable as a rfidgeek.Forwarder when the reader and
// the hub run in one process
func (h *Hub) Forward(_ context.Context, ev rfidgeek.Event) error {
	h.Broadcast([]byte(ev.Payload))
	return nil
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.peers)
}

// Close disconnects every client and refuses new ones
func (h *Hub) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for p := range h.peers {
		delete(h.peers, p)
		p.close()
	}
	return nil
}

func (h *Hub) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = fmt.Fprintf(w, "ok %d\n", h.ClientCount())
}

func (h *Hub) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws: upgrade failed")
		return
	}

	p := &peer{conn: conn, send: make(chan []byte, sendQueueLen)}
	if !h.register(p) {
		_ = conn.Close()
		return
	}
	log.Debug().Str("remote", conn.RemoteAddr().String()).Msg("ws: client connected")

	go h.writePump(p)
	h.readPump(p)
}

func (h *Hub) register(p *peer) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.peers[p] = struct{}{}
	return true
}

func (h *Hub) unregister(p *peer) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.peers[p]; ok {
		delete(h.peers, p)
		p.close()
	}
}

func (h *Hub) readPump(p *peer) {
	defer h.unregister(p)
	for {
		msgType, msg, err := p.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Msg("ws: client read failed")
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		log.Debug().Str("message", string(msg)).Msg("ws: broadcasting")
		h.Broadcast(msg)
	}
}

func (*Hub) writePump(p *peer) {
	defer func() { _ = p.conn.Close() }()
	for msg := range p.send {
		_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := p.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug().Err(err).Msg("ws: client write failed")
			return
		}
	}
	_ = p.conn.SetWriteDeadline(time.Now().Add(writeWait))
	_ = p.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
