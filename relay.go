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

// Relay receives the engine's announcements. Methods are called from the
// engine's event loop and must not block; wrap slow consumers in a
// ForwardingRelay.
type Relay interface {
	TagFound(id string)
	TagRemoved()
	DataReady(payload string)
	Error(err error)
}

// Callbacks adapts plain functions to Relay. Nil fields are skipped.
type Callbacks struct {
	OnTagFound   func(id string)
	OnTagRemoved func()
	OnDataReady  func(payload string)
	OnError      func(err error)
}

func (c Callbacks) TagFound(id string) {
	if c.OnTagFound != nil {
		c.OnTagFound(id)
	}
}

func (c Callbacks) TagRemoved() {
	if c.OnTagRemoved != nil {
		c.OnTagRemoved()
	}
}

func (c Callbacks) DataReady(payload string) {
	if c.OnDataReady != nil {
		c.OnDataReady(payload)
	}
}

func (c Callbacks) Error(err error) {
	if c.OnError != nil {
		c.OnError(err)
	}
}

// MultiRelay fans every event out to each relay in order
type MultiRelay []Relay

func (m MultiRelay) TagFound(id string) {
	for _, r := range m {
		r.TagFound(id)
	}
}

func (m MultiRelay) TagRemoved() {
	for _, r := range m {
		r.TagRemoved()
	}
}

func (m MultiRelay) DataReady(payload string) {
	for _, r := range m {
		r.DataReady(payload)
	}
}

func (m MultiRelay) Error(err error) {
	for _, r := range m {
		r.Error(err)
	}
}
