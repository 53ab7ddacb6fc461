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
	"bytes"
	"regexp"
	"strings"
)

// FrameKind classifies one chunk of reader output
type FrameKind int

const (
	FrameUnrecognized FrameKind = iota
	FrameNoTag
	FrameTagFound
	FrameData
)

func (k FrameKind) String() string {
	switch k {
	case FrameNoTag:
		return "no-tag"
	case FrameTagFound:
		return "tag-found"
	case FrameData:
		return "data"
	default:
		return "unrecognized"
	}
}

// Frame is a parsed, classified reader response. Value holds the tag id for
// FrameTagFound and the hex payload (status byte stripped) for FrameData.
type Frame struct {
	Value string
	Raw   string
	Kind  FrameKind
}

// The reader wraps every payload in square brackets. An ISO15693 inventory
// slot is reported as [<uid>,<slot>]; slot code 40 means nothing answered.
const noTagMarker = ",40]"

var (
	inventorySlotPattern = regexp.MustCompile(`\[([0-9A-F]+),[0-9A-Fa-f]{2}\]`)
	dataPattern          = regexp.MustCompile(`\[00((?:[0-9A-Fa-f]{2})+)\]`)
	bracketPattern       = regexp.MustCompile(`\[([^\[\]]+)\]`)
)

// Parse classifies raw reader output for the given tag type
func Parse(raw, tagType string) Frame {
	return ProfileFor(tagType).Parse(raw)
}

func unrecognized(raw string) Frame {
	return Frame{Kind: FrameUnrecognized, Raw: raw}
}

// parseInventoryFrame applies the ISO15693 rules: no-tag marker first, then
// an inventory slot, then a data response.
func parseInventoryFrame(raw string) Frame {
	if strings.Contains(raw, noTagMarker) {
		return Frame{Kind: FrameNoTag, Raw: raw}
	}
	if m := inventorySlotPattern.FindStringSubmatch(raw); m != nil {
		return Frame{Kind: FrameTagFound, Value: m[1], Raw: raw}
	}
	if m := dataPattern.FindStringSubmatch(raw); m != nil {
		return Frame{Kind: FrameData, Value: strings.ToUpper(m[1]), Raw: raw}
	}
	return unrecognized(raw)
}

// parseProximityFrame treats any bracketed content as a tag id
func parseProximityFrame(raw string) Frame {
	if m := bracketPattern.FindStringSubmatch(raw); m != nil {
		return Frame{Kind: FrameTagFound, Value: m[1], Raw: raw}
	}
	return unrecognized(raw)
}

// maxPendingFrame bounds how much unterminated input a FrameSplitter holds
const maxPendingFrame = 1024

// FrameSplitter cuts a byte stream into single reader responses. A response
// ends at a closing bracket or a line break; an opening bracket starts a new
// one. Input that has not been terminated yet is kept until the next Feed.
// The zero value is ready to use. A FrameSplitter is not safe for concurrent
// use.
type FrameSplitter struct {
	pending []byte
}

// Feed appends data to the stream and returns every response it completes
func (s *FrameSplitter) Feed(data []byte) []string {
	var frames []string
	for _, b := range data {
		switch b {
		case '[':
			frames = s.flush(frames)
			s.pending = append(s.pending, b)
		case ']':
			s.pending = append(s.pending, b)
			frames = s.flush(frames)
		case '\r', '\n':
			frames = s.flush(frames)
		default:
			s.pending = append(s.pending, b)
			if len(s.pending) >= maxPendingFrame {
				frames = s.flush(frames)
			}
		}
	}
	return frames
}

// Pending reports whether an unterminated response is buffered
func (s *FrameSplitter) Pending() bool {
	return len(s.pending) > 0
}

// Reset drops any buffered partial response
func (s *FrameSplitter) Reset() {
	s.pending = s.pending[:0]
}

func (s *FrameSplitter) flush(frames []string) []string {
	frame := bytes.TrimSpace(s.pending)
	s.pending = s.pending[:0]
	if len(frame) == 0 {
		return frames
	}
	return append(frames, string(frame))
}
