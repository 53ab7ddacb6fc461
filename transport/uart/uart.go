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

// Package uart provides a serial transport for RFIDgeek style readers
package uart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial"

	"github.com/rfidgeek/go-rfidgeek"
	"github.com/rfidgeek/go-rfidgeek/internal/transport"
)

const (
	// DefaultPortName is the serial device used when none is configured
	DefaultPortName = "/dev/ttyUSB0"

	// BaudRate is fixed; the reader does not negotiate
	BaudRate = 115200

	readBufferSize = 1024
	eventQueueSize = 64

	// pollTimeout bounds each port read so Close is noticed promptly
	pollTimeout = 100 * time.Millisecond

	// a freshly plugged adapter can stay busy or unreadable until udev
	// has finished with it
	openRetries    = 3
	openRetryDelay = 250 * time.Millisecond
)

// Transport is a serial link to the reader. Each StreamData event carries
// one complete bracketed response or line, however the port split it.
type Transport struct {
	port      serial.Port
	events    chan rfidgeek.StreamEvent
	done      chan struct{}
	readDone  chan struct{}
	portName  string
	writeMu   sync.Mutex
	closeOnce sync.Once
	connected atomic.Bool
}

// Mode returns the serial settings the reader expects: 115200 8N1
func Mode() *serial.Mode {
	return &serial.Mode{
		BaudRate: BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
}

// Open opens portName and starts reading from it
func Open(portName string) (*Transport, error) {
	if portName == "" {
		portName = DefaultPortName
	}

	port, err := transport.WithRetry(context.Background(), transport.RetryConfig{
		ShouldRetry: isTransientOpenError,
		OnRetry: func(attempt int, err error) {
			log.Debug().Err(err).Str("port", portName).Int("attempt", attempt).Msg("uart: retrying open")
		},
		Description: "open " + portName,
		MaxRetries:  openRetries,
		RetryDelay:  openRetryDelay,
	}, func() (serial.Port, error) {
		return serial.Open(portName, Mode())
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", rfidgeek.ErrTransportOpen, portName, err)
	}
	if err := port.SetReadTimeout(pollTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: failed to set read timeout: %w", rfidgeek.ErrTransportOpen, err)
	}

	return New(port, portName), nil
}

// isTransientOpenError reports open failures that can clear up on their own
func isTransientOpenError(err error) bool {
	code, ok := portErrorCode(err)
	if !ok {
		return false
	}
	switch code {
	case serial.PortBusy, serial.PermissionDenied:
		return true
	default:
		return false
	}
}

// New wraps an already open port. The port is owned by the transport from
// now on and closed by Close.
func New(port serial.Port, portName string) *Transport {
	t := &Transport{
		port:     port,
		portName: portName,
		events:   make(chan rfidgeek.StreamEvent, eventQueueSize),
		done:     make(chan struct{}),
		readDone: make(chan struct{}),
	}
	t.connected.Store(true)
	go t.readLoop()
	return t
}

// PortName returns the device path
func (t *Transport) PortName() string {
	return t.portName
}

// Write sends one command. The bytes are drained to the device before
// Write returns.
func (t *Transport) Write(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !t.connected.Load() {
		return rfidgeek.ErrTransportClosed
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	n, err := t.port.Write(data)
	if err != nil {
		return fmt.Errorf("failed to write to port: %w", err)
	}
	if n != len(data) {
		return fmt.Errorf("short write to port: %d of %d bytes", n, len(data))
	}
	if err := t.port.Drain(); err != nil {
		return fmt.Errorf("failed to drain port: %w", err)
	}
	log.Debug().Str("port", t.portName).Bytes("command", data).Msg("uart: sent command")
	return ctx.Err()
}

func (t *Transport) Events() <-chan rfidgeek.StreamEvent {
	return t.events
}

// Close stops the read loop and closes the port. The event stream ends with
// StreamClose.
func (t *Transport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.connected.Store(false)
		close(t.done)
		err = t.port.Close()
		<-t.readDone
	})
	if err != nil {
		return fmt.Errorf("failed to close serial port: %w", err)
	}
	return nil
}

func (t *Transport) IsConnected() bool {
	return t.connected.Load()
}

func (*Transport) Type() rfidgeek.TransportType {
	return rfidgeek.TransportUART
}

func (t *Transport) readLoop() {
	defer close(t.readDone)
	defer func() {
		t.connected.Store(false)
		// best effort: nobody may be listening any more
		select {
		case t.events <- rfidgeek.StreamEvent{Kind: rfidgeek.StreamClose}:
		default:
		}
		close(t.events)
	}()

	if !t.emit(rfidgeek.StreamEvent{Kind: rfidgeek.StreamOpen}) {
		return
	}

	var splitter rfidgeek.FrameSplitter
	buf := make([]byte, readBufferSize)
	for {
		n, err := t.port.Read(buf)
		if t.closing() {
			return
		}
		if err != nil {
			if !t.emit(rfidgeek.StreamEvent{Kind: rfidgeek.StreamError, Err: err}) {
				return
			}
			if isDisconnectionError(err) {
				log.Warn().Err(err).Str("port", t.portName).Msg("uart: device disconnected")
				return
			}
			continue
		}
		if n == 0 {
			continue
		}
		// a response can straddle two port reads; emit whole responses only
		for _, frame := range splitter.Feed(buf[:n]) {
			if !t.emit(rfidgeek.StreamEvent{Kind: rfidgeek.StreamData, Data: []byte(frame)}) {
				return
			}
		}
	}
}

// emit queues ev, giving up only when the transport is closed
func (t *Transport) emit(ev rfidgeek.StreamEvent) bool {
	select {
	case t.events <- ev:
		return true
	case <-t.done:
		return false
	}
}

func (t *Transport) closing() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// isDisconnectionError reports whether err means the device is gone
func isDisconnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, io.EOF) {
		return true
	}

	if code, ok := portErrorCode(err); ok {
		return isDisconnectionCode(code)
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "device not configured") ||
		strings.Contains(errStr, "input/output error") ||
		strings.Contains(errStr, "no such device") ||
		strings.Contains(errStr, "broken pipe")
}

// portErrorCode extracts the code of a serial.PortError in err's chain
func portErrorCode(err error) (serial.PortErrorCode, bool) {
	var portErr *serial.PortError
	if !errors.As(err, &portErr) {
		return 0, false
	}
	return portErr.Code(), true
}

func isDisconnectionCode(code serial.PortErrorCode) bool {
	switch code {
	case serial.PortNotFound, serial.PortClosed, serial.InvalidSerialPort:
		return true
	default:
		return false
	}
}
