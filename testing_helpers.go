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
)

// MockTransport is a scriptable in-memory Transport for tests. Writes are
// recorded; ResponseFunc, when set, produces the frames the simulated reader
// sends back after each write.
type MockTransport struct {
	ResponseFunc func(cmd []byte) [][]byte
	events       chan StreamEvent
	blockChan    chan struct{}
	writeErr     map[string]error
	writes       [][]byte
	mu           sync.Mutex
	blocked      bool
	closed       bool
}

// NewMockTransport creates a connected mock transport
func NewMockTransport() *MockTransport {
	return &MockTransport{
		events:    make(chan StreamEvent, 1024),
		blockChan: make(chan struct{}),
		writeErr:  make(map[string]error),
	}
}

// NewMockTransportWithFunc creates a mock transport that answers writes with fn
func NewMockTransportWithFunc(fn func(cmd []byte) [][]byte) *MockTransport {
	m := NewMockTransport()
	m.ResponseFunc = fn
	return m
}

// Write records data and, unless writes are blocked or an error is scripted
// for this command, injects the scripted responses.
func (m *MockTransport) Write(ctx context.Context, data []byte) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return ErrTransportClosed
	}
	blocked := m.blocked
	blockChan := m.blockChan
	m.mu.Unlock()

	if blocked {
		select {
		case <-blockChan:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	m.mu.Lock()
	cmd := append([]byte(nil), data...)
	m.writes = append(m.writes, cmd)
	err := m.scriptedErr(string(cmd))
	fn := m.ResponseFunc
	m.mu.Unlock()

	if err != nil {
		return err
	}
	if fn != nil {
		for _, frame := range fn(cmd) {
			m.InjectData(frame)
		}
	}
	return nil
}

func (m *MockTransport) scriptedErr(cmd string) error {
	if err, ok := m.writeErr[cmd]; ok {
		return err
	}
	return m.writeErr[""]
}

// SetWriteError makes every write of cmd fail with err. An empty cmd
// matches all commands; a nil err clears the entry.
func (m *MockTransport) SetWriteError(cmd string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.writeErr, cmd)
		return
	}
	m.writeErr[cmd] = err
}

// BlockWrites makes subsequent writes wait until Unblock or until their
// context is cancelled
func (m *MockTransport) BlockWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocked = true
}

// Unblock releases all waiting writes and stops blocking new ones
func (m *MockTransport) Unblock() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.blocked {
		m.blocked = false
		close(m.blockChan)
		m.blockChan = make(chan struct{})
	}
}

// Inject delivers ev to the engine. Events after Close are dropped.
func (m *MockTransport) Inject(ev StreamEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.events <- ev
}

// InjectData delivers raw reader output
func (m *MockTransport) InjectData(raw []byte) {
	m.Inject(StreamEvent{Kind: StreamData, Data: raw})
}

// InjectError delivers a stream error
func (m *MockTransport) InjectError(err error) {
	m.Inject(StreamEvent{Kind: StreamError, Err: err})
}

// Writes returns a copy of every command written so far
func (m *MockTransport) Writes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.writes))
	for i, w := range m.writes {
		out[i] = string(w)
	}
	return out
}

// WriteCount returns how many writes completed
func (m *MockTransport) WriteCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.writes)
}

// ResetWrites forgets recorded writes
func (m *MockTransport) ResetWrites() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = nil
}

func (m *MockTransport) Events() <-chan StreamEvent {
	return m.events
}

// Close emits StreamClose, closes the event stream and releases blocked writes
func (m *MockTransport) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	if m.blocked {
		m.blocked = false
		close(m.blockChan)
	}
	m.events <- StreamEvent{Kind: StreamClose}
	close(m.events)
	return nil
}

func (m *MockTransport) IsConnected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return !m.closed
}

func (*MockTransport) Type() TransportType {
	return TransportMock
}
