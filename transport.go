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
)

// Transport is the serial link to the reader. Implementations deliver
// everything the reader sends through Events and accept command bytes
// through Write.
type Transport interface {
	// Write sends one command and returns once the bytes have been handed
	// to the device, or with an error.
	Write(ctx context.Context, data []byte) error

	// Events returns the stream of open, data, error and close
	// notifications. The channel is closed after StreamClose.
	Events() <-chan StreamEvent

	// Close closes the transport connection
	Close() error

	// IsConnected returns true if the transport is connected
	IsConnected() bool

	// Type returns the transport type
	Type() TransportType
}

// TransportType represents the type of transport
type TransportType string

const (
	// TransportUART represents UART/serial transport.
	TransportUART TransportType = "uart"
	// TransportMock represents a mock transport for testing
	TransportMock TransportType = "mock"
)

// StreamEventKind identifies a transport stream notification
type StreamEventKind int

const (
	StreamOpen StreamEventKind = iota
	StreamData
	StreamError
	StreamClose
)

func (k StreamEventKind) String() string {
	switch k {
	case StreamOpen:
		return "open"
	case StreamData:
		return "data"
	case StreamError:
		return "error"
	case StreamClose:
		return "close"
	default:
		return "unknown"
	}
}

// StreamEvent is one notification from the transport. Data is set for
// StreamData, Err for StreamError.
type StreamEvent struct {
	Err  error
	Data []byte
	Kind StreamEventKind
}
