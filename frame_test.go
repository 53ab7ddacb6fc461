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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		tagType string
		value   string
		kind    FrameKind
	}{
		{name: "empty slot", raw: "[,40]\r\n", tagType: TagTypeISO15693, kind: FrameNoTag},
		{name: "no tag wins over tag", raw: "[E0040100078E2A4B,5C][,40]", tagType: TagTypeISO15693, kind: FrameNoTag},
		{
			name: "inventory slot", raw: "[E0040100078E2A4B,5C]\r\n", tagType: TagTypeISO15693,
			kind: FrameTagFound, value: "E0040100078E2A4B",
		},
		{
			name: "inventory with lowercase slot code", raw: "[E004010000000001,5c]", tagType: TagTypeISO15693,
			kind: FrameTagFound, value: "E004010000000001",
		},
		{name: "lowercase id is not a tag", raw: "[e004010000000001,5C]", tagType: TagTypeISO15693, kind: FrameUnrecognized},
		{name: "data strips status", raw: "[0052464944]\r\n", tagType: TagTypeISO15693, kind: FrameData, value: "52464944"},
		{name: "data is uppercased", raw: "[00575f4f4b]", tagType: TagTypeISO15693, kind: FrameData, value: "575F4F4B"},
		{name: "odd data length", raw: "[00ABC]", tagType: TagTypeISO15693, kind: FrameUnrecognized},
		{name: "status only", raw: "[00]", tagType: TagTypeISO15693, kind: FrameUnrecognized},
		{name: "error status", raw: "[0F01]", tagType: TagTypeISO15693, kind: FrameUnrecognized},
		{name: "register echo", raw: "Register write request.\r\n[]", tagType: TagTypeISO15693, kind: FrameUnrecognized},
		{name: "empty", raw: "", tagType: TagTypeISO15693, kind: FrameUnrecognized},
		{name: "proximity tag", raw: "[04A22B1A5C6480]\r\n", tagType: "ISO14443A", kind: FrameTagFound, value: "04A22B1A5C6480"},
		{name: "proximity data-like frame", raw: "[0052464944]", tagType: "ISO14443B", kind: FrameTagFound, value: "0052464944"},
		{name: "proximity empty brackets", raw: "[]", tagType: "ISO14443A", kind: FrameUnrecognized},
		{name: "proximity text", raw: "ISO14443 type A", tagType: "ISO14443A", kind: FrameUnrecognized},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			frame := Parse(tt.raw, tt.tagType)
			assert.Equal(t, tt.kind, frame.Kind, "kind for %q", tt.raw)
			assert.Equal(t, tt.value, frame.Value)
			assert.Equal(t, tt.raw, frame.Raw)
		})
	}
}

func TestFrameSplitter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		chunks  []string
		want    []string
		pending bool
	}{
		{name: "whole frame", chunks: []string{"[,40]\r\n"}, want: []string{"[,40]"}},
		{name: "split data", chunks: []string{"[00AA", "BB]\r\n"}, want: []string{"[00AABB]"}},
		{
			name:   "two frames in one read",
			chunks: []string{"[E0040100078E2A4B,5C]\r\n[,40]\r\n"},
			want:   []string{"[E0040100078E2A4B,5C]", "[,40]"},
		},
		{name: "unterminated", chunks: []string{"[00AA"}, pending: true},
		{
			name:   "line before bracket",
			chunks: []string{"Register write request.\r\n[]"},
			want:   []string{"Register write request.", "[]"},
		},
		{name: "opening bracket ends junk", chunks: []string{"junk", "[,40]"}, want: []string{"junk", "[,40]"}},
		{name: "blank lines", chunks: []string{"\r\n\r\n", "  \n"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var s FrameSplitter
			var got []string
			for _, chunk := range tt.chunks {
				got = append(got, s.Feed([]byte(chunk))...)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.pending, s.Pending())
		})
	}
}

func TestFrameSplitter_LongInputIsFlushed(t *testing.T) {
	t.Parallel()

	var s FrameSplitter
	frames := s.Feed([]byte(strings.Repeat("A", maxPendingFrame+10)))
	assert.Len(t, frames, 1)
	assert.Len(t, frames[0], maxPendingFrame)
	assert.True(t, s.Pending())

	s.Reset()
	assert.False(t, s.Pending())
}

func TestFrameKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "no-tag", FrameNoTag.String())
	assert.Equal(t, "tag-found", FrameTagFound.String())
	assert.Equal(t, "data", FrameData.String())
	assert.Equal(t, "unrecognized", FrameUnrecognized.String())
}

func TestProfileFor(t *testing.T) {
	t.Parallel()

	iso := ProfileFor(TagTypeISO15693)
	assert.Equal(t, TagTypeISO15693, iso.Name())
	assert.True(t, iso.ChunkedRead())
	assert.True(t, iso.ReinitBeforeRead())

	prox := ProfileFor("ISO14443A")
	assert.Equal(t, "ISO14443A", prox.Name())
	assert.False(t, prox.ChunkedRead())
	assert.False(t, prox.ReinitBeforeRead())
}
