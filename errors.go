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
	"errors"
	"fmt"

	"github.com/rfidgeek/go-rfidgeek/readerconfig"
)

// Fatal errors are returned synchronously by New, Start or the transport
// constructors. Recoverable errors are delivered to Relay.Error.
var (
	ErrTransportOpen    = errors.New("transport open failed")
	ErrTransportClosed  = errors.New("transport closed")
	ErrWrite            = errors.New("write failed")
	ErrInitFailed       = errors.New("reader initialization failed")
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrAlreadyRunning   = errors.New("engine is already running")
	ErrOffsetOverflow   = errors.New("read offset exceeds one byte")
	ErrReadTimeout      = errors.New("tag read timed out")

	// ErrUnrecognizedFrame is never surfaced to a Relay; reader chatter that
	// does not classify is only logged.
	ErrUnrecognizedFrame = errors.New("unrecognized frame")

	// ErrConfigMissing reports a command sequence absent from the reader
	// config for the selected tag type.
	ErrConfigMissing = readerconfig.ErrConfigMissing
)

// WriteError describes a failed command write. It matches ErrWrite and the
// underlying transport error with errors.Is.
type WriteError struct {
	Err     error
	Op      string
	Command string
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("%s: write %s %q: %v", ErrWrite, e.Op, e.Command, e.Err)
}

// Unwrap exposes both the ErrWrite sentinel and the cause
func (e *WriteError) Unwrap() []error {
	return []error{ErrWrite, e.Err}
}

// TransportError wraps an error reported by the transport stream
type TransportError struct {
	Err error
	Op  string
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsRecoverable reports whether err belongs to the class of errors the engine
// survives: it reports them and keeps scanning.
func IsRecoverable(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrTransportOpen),
		errors.Is(err, ErrInitFailed),
		errors.Is(err, ErrConfigMissing),
		errors.Is(err, ErrInvalidParameter):
		return false
	}
	var transportErr *TransportError
	return errors.Is(err, ErrWrite) ||
		errors.Is(err, ErrOffsetOverflow) ||
		errors.Is(err, ErrReadTimeout) ||
		errors.As(err, &transportErr)
}
