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

// TagTypeISO15693 is the default tag type and the only one with a chunked
// memory read phase.
const TagTypeISO15693 = "ISO15693"

// TagProfile captures everything that differs between tag types. The engine
// selects one at construction and never branches on the tag type string
// afterwards.
type TagProfile interface {
	// Name returns the tag type the profile was selected for
	Name() string
	// Parse classifies raw reader output
	Parse(raw string) Frame
	// ChunkedRead reports whether a detected tag is followed by a memory read
	ChunkedRead() bool
	// ReinitBeforeRead reports whether the init codes are re-sent before
	// each read loop
	ReinitBeforeRead() bool
}

// ProfileFor returns the profile for a tag type. Unknown types are handled
// as single-shot proximity tags.
func ProfileFor(tagType string) TagProfile {
	if tagType == TagTypeISO15693 {
		return iso15693Profile{}
	}
	return proximityProfile{name: tagType}
}

type iso15693Profile struct{}

func (iso15693Profile) Name() string { return TagTypeISO15693 }

func (iso15693Profile) Parse(raw string) Frame { return parseInventoryFrame(raw) }

func (iso15693Profile) ChunkedRead() bool { return true }

func (iso15693Profile) ReinitBeforeRead() bool { return true }

// proximityProfile covers tags that report their id and nothing else
type proximityProfile struct {
	name string
}

func (p proximityProfile) Name() string { return p.name }

func (proximityProfile) Parse(raw string) Frame { return parseProximityFrame(raw) }

func (proximityProfile) ChunkedRead() bool { return false }

func (proximityProfile) ReinitBeforeRead() bool { return false }
