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
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config holds the engine settings. Zero values are replaced by defaults
// only through DefaultConfig; New validates whatever it is given.
//
// ReadTimeout is how long a read may wait for its next chunk before it is
// abandoned. Zero means five scan intervals.
type Config struct {
	TagType      string
	ScanInterval time.Duration
	ReadTimeout  time.Duration
	LengthToRead int
	BytesPerRead int
}

// readTimeoutIntervals is the default read timeout in scan intervals
const readTimeoutIntervals = 5

// DefaultConfig returns the reader defaults: ISO15693 tags, one inventory per
// second, eight bytes per tag read in one-block steps.
func DefaultConfig() *Config {
	return &Config{
		TagType:      TagTypeISO15693,
		ScanInterval: time.Second,
		LengthToRead: 8,
		BytesPerRead: 1,
	}
}

func (c *Config) validate() error {
	if c.TagType == "" {
		return fmt.Errorf("%w: tag type is empty", ErrInvalidParameter)
	}
	if c.ScanInterval <= 0 {
		return fmt.Errorf("%w: scan interval must be positive, got %v", ErrInvalidParameter, c.ScanInterval)
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("%w: read timeout must not be negative, got %v", ErrInvalidParameter, c.ReadTimeout)
	}
	if c.LengthToRead <= 0 {
		return fmt.Errorf("%w: length to read must be positive, got %d", ErrInvalidParameter, c.LengthToRead)
	}
	if c.BytesPerRead < 0 || c.BytesPerRead > maxCommandByte {
		return fmt.Errorf("%w: bytes per read must be within 0-%d, got %d",
			ErrInvalidParameter, maxCommandByte, c.BytesPerRead)
	}
	return nil
}

func (c *Config) readTimeout() time.Duration {
	if c.ReadTimeout > 0 {
		return c.ReadTimeout
	}
	return readTimeoutIntervals * c.ScanInterval
}

// Option is a functional option for configuring an Engine
type Option func(*Engine) error

// WithConfig replaces the whole engine configuration
func WithConfig(config *Config) Option {
	return func(e *Engine) error {
		if config == nil {
			return fmt.Errorf("%w: config is nil", ErrInvalidParameter)
		}
		c := *config
		e.config = &c
		return nil
	}
}

// WithTagType selects the tag type, and with it the tag profile and the
// command set taken from the reader config
func WithTagType(tagType string) Option {
	return func(e *Engine) error {
		e.config.TagType = tagType
		return nil
	}
}

// WithScanInterval sets how often an inventory command is issued while scanning
func WithScanInterval(interval time.Duration) Option {
	return func(e *Engine) error {
		e.config.ScanInterval = interval
		return nil
	}
}

// WithReadTimeout sets how long a read waits for each chunk
func WithReadTimeout(timeout time.Duration) Option {
	return func(e *Engine) error {
		e.config.ReadTimeout = timeout
		return nil
	}
}

// WithLengthToRead sets how many bytes of tag memory make a complete read
func WithLengthToRead(n int) Option {
	return func(e *Engine) error {
		e.config.LengthToRead = n
		return nil
	}
}

// WithBytesPerRead sets the block count sent with each read command
func WithBytesPerRead(n int) Option {
	return func(e *Engine) error {
		e.config.BytesPerRead = n
		return nil
	}
}

// WithRelay subscribes r to the engine's events
func WithRelay(r Relay) Option {
	return func(e *Engine) error {
		if r == nil {
			return fmt.Errorf("%w: relay is nil", ErrInvalidParameter)
		}
		e.relays = append(e.relays, r)
		return nil
	}
}

// WithForwarder pushes tag, removal and data events to a remote channel
// through a ForwardingRelay. The relay is closed by Engine.Close.
func WithForwarder(fwd Forwarder, config *ForwardConfig) Option {
	return func(e *Engine) error {
		if fwd == nil {
			return fmt.Errorf("%w: forwarder is nil", ErrInvalidParameter)
		}
		e.pendingForwarders = append(e.pendingForwarders, pendingForwarder{fwd: fwd, config: config})
		return nil
	}
}

// WithLogger sets the logger used by the engine
func WithLogger(logger zerolog.Logger) Option {
	return func(e *Engine) error {
		e.log = logger
		return nil
	}
}

type pendingForwarder struct {
	fwd    Forwarder
	config *ForwardConfig
}
