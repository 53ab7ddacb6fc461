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

package uart

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.bug.st/serial"

	"github.com/rfidgeek/go-rfidgeek"
)

// fakePort is an in-memory serial.Port. Reads return queued chunks, or
// time out like a real port with a read timeout set.
type fakePort struct {
	reads    chan []byte
	readErrs chan error
	closed   chan struct{}
	writeErr error
	written  bytes.Buffer
	mu       sync.Mutex
	drained  int
	once     sync.Once
}

func newFakePort() *fakePort {
	return &fakePort{
		reads:    make(chan []byte, 16),
		readErrs: make(chan error, 4),
		closed:   make(chan struct{}),
	}
}

func (p *fakePort) Read(b []byte) (int, error) {
	select {
	case <-p.closed:
		return 0, errors.New("port closed")
	case err := <-p.readErrs:
		return 0, err
	case chunk := <-p.reads:
		return copy(b, chunk), nil
	case <-time.After(5 * time.Millisecond):
		return 0, nil
	}
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(b)
}

func (p *fakePort) Drain() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.drained++
	return nil
}

func (p *fakePort) Close() error {
	p.once.Do(func() { close(p.closed) })
	return nil
}

func (*fakePort) SetMode(*serial.Mode) error                           { return nil }
func (*fakePort) ResetInputBuffer() error                              { return nil }
func (*fakePort) ResetOutputBuffer() error                             { return nil }
func (*fakePort) SetDTR(bool) error                                    { return nil }
func (*fakePort) SetRTS(bool) error                                    { return nil }
func (*fakePort) GetModemStatusBits() (*serial.ModemStatusBits, error) { return &serial.ModemStatusBits{}, nil }
func (*fakePort) SetReadTimeout(time.Duration) error                   { return nil }
func (*fakePort) Break(time.Duration) error                            { return nil }

func nextEvent(t *testing.T, tr *Transport) rfidgeek.StreamEvent {
	t.Helper()
	select {
	case ev, ok := <-tr.Events():
		require.True(t, ok, "event stream closed early")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no stream event")
		return rfidgeek.StreamEvent{}
	}
}

func TestTransportCreation(t *testing.T) {
	t.Parallel()

	tr := New(newFakePort(), DefaultPortName)
	defer func() { _ = tr.Close() }()

	assert.Equal(t, DefaultPortName, tr.PortName())
	assert.Equal(t, rfidgeek.TransportUART, tr.Type())
	assert.True(t, tr.IsConnected())

	mode := Mode()
	assert.Equal(t, 115200, mode.BaudRate)
	assert.Equal(t, 8, mode.DataBits)
	assert.Equal(t, serial.NoParity, mode.Parity)
	assert.Equal(t, serial.OneStopBit, mode.StopBits)
}

func TestTransport_StreamsData(t *testing.T) {
	t.Parallel()

	port := newFakePort()
	tr := New(port, "fake")

	assert.Equal(t, rfidgeek.StreamOpen, nextEvent(t, tr).Kind)

	port.reads <- []byte("[E0040100078E2A4B,5C]\r\n")
	ev := nextEvent(t, tr)
	assert.Equal(t, rfidgeek.StreamData, ev.Kind)
	assert.Equal(t, "[E0040100078E2A4B,5C]", string(ev.Data))

	port.readErrs <- errors.New("parity error")
	ev = nextEvent(t, tr)
	assert.Equal(t, rfidgeek.StreamError, ev.Kind)
	require.EqualError(t, ev.Err, "parity error")
	assert.True(t, tr.IsConnected(), "a transient read error keeps the port open")

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.False(t, tr.IsConnected())
	for range tr.Events() {
		// drain until the stream is closed
	}
}

func TestTransport_ReassemblesSplitResponses(t *testing.T) {
	t.Parallel()

	port := newFakePort()
	tr := New(port, "fake")
	defer func() { _ = tr.Close() }()

	assert.Equal(t, rfidgeek.StreamOpen, nextEvent(t, tr).Kind)

	port.reads <- []byte("[00AA")
	port.reads <- []byte("BB]\r\n[,4")
	port.reads <- []byte("0]\r\n")

	ev := nextEvent(t, tr)
	assert.Equal(t, rfidgeek.StreamData, ev.Kind)
	assert.Equal(t, "[00AABB]", string(ev.Data))
	assert.Equal(t, "[,40]", string(nextEvent(t, tr).Data))
}

func TestTransport_DisconnectEndsStream(t *testing.T) {
	t.Parallel()

	port := newFakePort()
	tr := New(port, "fake")
	defer func() { _ = tr.Close() }()

	assert.Equal(t, rfidgeek.StreamOpen, nextEvent(t, tr).Kind)
	port.readErrs <- io.EOF

	assert.Equal(t, rfidgeek.StreamError, nextEvent(t, tr).Kind)
	assert.Equal(t, rfidgeek.StreamClose, nextEvent(t, tr).Kind)
	_, ok := <-tr.Events()
	assert.False(t, ok)
	assert.False(t, tr.IsConnected())
}

func TestTransport_Write(t *testing.T) {
	t.Parallel()

	port := newFakePort()
	tr := New(port, "fake")
	defer func() { _ = tr.Close() }()

	require.NoError(t, tr.Write(context.Background(), []byte("0108000304FF0000")))
	port.mu.Lock()
	assert.Equal(t, "0108000304FF0000", port.written.String())
	assert.Equal(t, 1, port.drained)
	port.mu.Unlock()

	port.mu.Lock()
	port.writeErr = errors.New("broken pipe")
	port.mu.Unlock()
	require.ErrorContains(t, tr.Write(context.Background(), []byte("01")), "broken pipe")
}

func TestTransport_WriteContext(t *testing.T) {
	t.Parallel()

	tr := New(newFakePort(), "fake")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, tr.Write(ctx, []byte("01")), context.Canceled)

	require.NoError(t, tr.Close())
	require.ErrorIs(t, tr.Write(context.Background(), []byte("01")), rfidgeek.ErrTransportClosed)
}

func TestOpenMissingPort(t *testing.T) {
	t.Parallel()

	_, err := Open("/dev/rfidgeek-does-not-exist")
	require.ErrorIs(t, err, rfidgeek.ErrTransportOpen)
}

func TestIsDisconnectionError(t *testing.T) {
	t.Parallel()

	assert.False(t, isDisconnectionError(nil))
	assert.True(t, isDisconnectionError(io.EOF))
	assert.True(t, isDisconnectionError(errors.New("read /dev/ttyUSB0: input/output error")))
	assert.False(t, isDisconnectionError(errors.New("framing error")))
}

func TestIsTransientOpenError(t *testing.T) {
	t.Parallel()

	// the zero PortError carries the PortBusy code
	assert.True(t, isTransientOpenError(&serial.PortError{}))
	assert.True(t, isTransientOpenError(fmt.Errorf("open: %w", &serial.PortError{})))
	assert.False(t, isTransientOpenError(errors.New("no such file or directory")))
}

func TestPortErrorCode(t *testing.T) {
	t.Parallel()

	// serial reports *PortError; the zero value carries PortBusy
	code, ok := portErrorCode(fmt.Errorf("read: %w", &serial.PortError{}))
	require.True(t, ok)
	assert.Equal(t, serial.PortBusy, code)

	_, ok = portErrorCode(errors.New("plain"))
	assert.False(t, ok)

	assert.True(t, isDisconnectionCode(serial.PortClosed))
	assert.True(t, isDisconnectionCode(serial.PortNotFound))
	assert.True(t, isDisconnectionCode(serial.InvalidSerialPort))
	assert.False(t, isDisconnectionCode(serial.PortBusy))
	assert.False(t, isDisconnectionError(&serial.PortError{}), "a busy port is not gone")
}
