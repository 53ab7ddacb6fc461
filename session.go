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
	"time"
)

// Mode is the acquisition state of an engine
type Mode int

const (
	ModeIdle Mode = iota
	ModeScanning
	ModeReading
)

func (m Mode) String() string {
	switch m {
	case ModeIdle:
		return "idle"
	case ModeScanning:
		return "scanning"
	case ModeReading:
		return "reading"
	default:
		return "unknown"
	}
}

// Session is the engine's run state. One Session exists per engine; it is
// owned by the engine's event loop and only changed through the transition
// methods below.
type Session struct {
	LastSeenTime  time.Time
	ReadStartTime time.Time
	CurrentTagID  string
	ReadBuffer    []byte
	ReadOffset    int
	Mode          Mode
}

// RegisterTag records id as the present tag and reports whether it differs
// from the one already registered
func (s *Session) RegisterTag(id string) bool {
	s.LastSeenTime = time.Now()
	if s.CurrentTagID == id {
		return false
	}
	s.CurrentTagID = id
	return true
}

// ClearTag forgets the present tag and reports whether one was registered
func (s *Session) ClearTag() bool {
	had := s.CurrentTagID != ""
	s.CurrentTagID = ""
	s.LastSeenTime = time.Time{}
	return had
}

// TransitionToReading starts a fresh read at offset zero
func (s *Session) TransitionToReading() {
	s.Mode = ModeReading
	s.resetRead()
	s.ReadStartTime = time.Now()
}

// TransitionToScanning drops any in-progress read. The registered tag is
// kept so the next inventory sighting of it is recognised as a duplicate.
func (s *Session) TransitionToScanning() {
	s.Mode = ModeScanning
	s.resetRead()
}

// TransitionToIdle resets the session completely
func (s *Session) TransitionToIdle() {
	s.Mode = ModeIdle
	s.CurrentTagID = ""
	s.LastSeenTime = time.Time{}
	s.resetRead()
}

// AppendChunk adds decoded chunk bytes to the read buffer
func (s *Session) AppendChunk(chunk []byte) {
	s.ReadBuffer = append(s.ReadBuffer, chunk...)
}

// AdvanceOffset moves the next read offset forward by step
func (s *Session) AdvanceOffset(step int) {
	s.ReadOffset += step
}

// Snapshot returns a copy that shares no memory with s
func (s *Session) Snapshot() Session {
	c := *s
	if s.ReadBuffer != nil {
		c.ReadBuffer = append([]byte(nil), s.ReadBuffer...)
	}
	return c
}

func (s *Session) resetRead() {
	s.ReadBuffer = nil
	s.ReadOffset = 0
	s.ReadStartTime = time.Time{}
}
