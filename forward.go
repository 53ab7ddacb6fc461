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

package rfidgeek

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// EventKind names a forwarded event
type EventKind string

const (
	EventTag     EventKind = "tag"
	EventRemoved EventKind = "removed"
	EventData    EventKind = "data"
)

// RemovedNotice is the payload forwarded when a tag leaves the field
const RemovedNotice = "Tag removed"

// Event is what a ForwardingRelay hands to its Forwarder
type Event struct {
	Time    time.Time
	Kind    EventKind
	Payload string
}

// Forwarder pushes events to a remote channel such as an MQTT broker or a
// WebSocket server.
type Forwarder interface {
	Forward(ctx context.Context, ev Event) error
	Close() error
}

// ForwardConfig tunes a ForwardingRelay
type ForwardConfig struct {
	Logger      *zerolog.Logger
	QueueSize   int
	SendTimeout time.Duration
}

// DefaultForwardConfig returns the default queue size and per-send timeout
func DefaultForwardConfig() *ForwardConfig {
	return &ForwardConfig{
		QueueSize:   32,
		SendTimeout: 2 * time.Second,
	}
}

// ForwardingRelay is a best-effort Relay in front of a Forwarder. Events go
// through a bounded queue drained by one goroutine; when the queue is full
// the event is dropped. Forwarder failures are logged and never reach the
// engine.
type ForwardingRelay struct {
	fwd     Forwarder
	queue   chan Event
	done    chan struct{}
	log     zerolog.Logger
	timeout time.Duration
	mu      sync.RWMutex
	dropped atomic.Int64
	failed  atomic.Int64
	closed  bool
}

// NewForwardingRelay starts the delivery goroutine for fwd
func NewForwardingRelay(fwd Forwarder, config *ForwardConfig) *ForwardingRelay {
	if config == nil {
		config = DefaultForwardConfig()
	}
	if config.QueueSize <= 0 {
		config.QueueSize = DefaultForwardConfig().QueueSize
	}
	if config.SendTimeout <= 0 {
		config.SendTimeout = DefaultForwardConfig().SendTimeout
	}
	log := Logger()
	if config.Logger != nil {
		log = *config.Logger
	}
	r := &ForwardingRelay{
		fwd:     fwd,
		queue:   make(chan Event, config.QueueSize),
		done:    make(chan struct{}),
		log:     log.With().Str("relay", "forward").Logger(),
		timeout: config.SendTimeout,
	}
	go r.run()
	return r
}

func (r *ForwardingRelay) TagFound(id string) {
	r.enqueue(EventTag, id)
}

func (r *ForwardingRelay) TagRemoved() {
	r.enqueue(EventRemoved, RemovedNotice)
}

func (r *ForwardingRelay) DataReady(payload string) {
	r.enqueue(EventData, payload)
}

// Error is not forwarded; errors stay local to the host application
func (*ForwardingRelay) Error(error) {}

// Dropped returns how many events were discarded because the queue was full
func (r *ForwardingRelay) Dropped() int64 {
	return r.dropped.Load()
}

// Failed returns how many events the forwarder rejected
func (r *ForwardingRelay) Failed() int64 {
	return r.failed.Load()
}

// Close delivers what is queued, stops the goroutine and closes the forwarder
func (r *ForwardingRelay) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	<-r.done
	return r.fwd.Close()
}

func (r *ForwardingRelay) enqueue(kind EventKind, payload string) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return
	}
	ev := Event{Kind: kind, Payload: payload, Time: time.Now()}
	select {
	case r.queue <- ev:
	default:
		r.dropped.Add(1)
		r.log.Warn().Str("event", string(kind)).Msg("forward queue full, dropping event")
	}
}

func (r *ForwardingRelay) run() {
	defer close(r.done)
	for ev := range r.queue {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		err := r.fwd.Forward(ctx, ev)
		cancel()
		if err != nil {
			r.failed.Add(1)
			r.log.Warn().Err(err).Str("event", string(ev.Kind)).Msg("forward failed")
		}
	}
}
