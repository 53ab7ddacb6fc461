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

package ws

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/rfidgeek/go-rfidgeek"
)

// DefaultURL is the hub address a reader pushes to by default
const DefaultURL = "ws://localhost:8080" + Path

// Client is a rfidgeek.Forwarder that sends each event payload as a text
// message. The connection is dialed on first use and redialed on the next
// send after a failure.
type Client struct {
	dialer *websocket.Dialer
	conn   *websocket.Conn
	url    string
	mu     sync.Mutex
}

// NewClient creates a client for url, DefaultURL if empty
func NewClient(url string) *Client {
	if url == "" {
		url = DefaultURL
	}
	return &Client{
		url: url,
		dialer: &websocket.Dialer{
			HandshakeTimeout: 5 * time.Second,
		},
	}
}

// URL returns the server address
func (c *Client) URL() string {
	return c.url
}

// Forward sends ev.Payload to the server
func (c *Client) Forward(ctx context.Context, ev rfidgeek.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		conn, resp, err := c.dialer.DialContext(ctx, c.url, nil)
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
		if err != nil {
			return fmt.Errorf("dial %s: %w", c.url, err)
		}
		log.Info().Str("url", c.url).Msg("ws: connected")
		c.conn = conn
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(writeWait)
	}
	_ = c.conn.SetWriteDeadline(deadline)

	if err := c.conn.WriteMessage(websocket.TextMessage, []byte(ev.Payload)); err != nil {
		_ = c.conn.Close()
		c.conn = nil
		return fmt.Errorf("send %s event: %w", ev.Kind, err)
	}
	return nil
}

// Close closes the connection, if any
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
	err := c.conn.Close()
	c.conn = nil
	return err
}
