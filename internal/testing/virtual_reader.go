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

package testing

import (
	"strconv"
	"strings"
	"sync"
)

const (
	readPrefix      = "010C000304180023"
	inventoryMarker = "0304142601"
)

// VirtualTag is a simulated ISO15693 tag with block-addressed memory
type VirtualTag struct {
	UID       string
	Memory    []byte
	BlockSize int
}

// NewVirtualTag creates a tag whose memory is data, read in one-byte blocks
func NewVirtualTag(uid string, data []byte) *VirtualTag {
	return &VirtualTag{
		UID:       uid,
		Memory:    append([]byte(nil), data...),
		BlockSize: 1,
	}
}

// ReadBlocks returns count blocks starting at block. Reads past the end of
// memory return what is left.
func (v *VirtualTag) ReadBlocks(block, count int) []byte {
	start := block * v.BlockSize
	end := start + count*v.BlockSize
	if start >= len(v.Memory) {
		return nil
	}
	if end > len(v.Memory) {
		end = len(v.Memory)
	}
	return append([]byte(nil), v.Memory[start:end]...)
}

// VirtualReader answers reader commands the way the hardware does. The
// field holds at most one tag.
type VirtualReader struct {
	tag   *VirtualTag
	reads []int
	mu    sync.Mutex
}

// NewVirtualReader creates a reader with an empty field
func NewVirtualReader() *VirtualReader {
	return &VirtualReader{}
}

// Insert places tag in the field
func (r *VirtualReader) Insert(tag *VirtualTag) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tag = tag
}

// Remove empties the field
func (r *VirtualReader) Remove() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tag = nil
}

// ReadOffsets returns the block offsets of every read command answered
func (r *VirtualReader) ReadOffsets() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.reads...)
}

// Respond returns the frames the reader sends for cmd. The read command
// carries the first block and the block count minus one.
func (r *VirtualReader) Respond(cmd []byte) [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := string(cmd)
	switch {
	case strings.HasPrefix(s, readPrefix) && len(s) >= len(readPrefix)+4:
		offset, err1 := strconv.ParseUint(s[len(readPrefix):len(readPrefix)+2], 16, 8)
		blocks, err2 := strconv.ParseUint(s[len(readPrefix)+2:len(readPrefix)+4], 16, 8)
		if err1 != nil || err2 != nil {
			return nil
		}
		r.reads = append(r.reads, int(offset))
		if r.tag == nil {
			return nil
		}
		return [][]byte{BuildDataResponse(r.tag.ReadBlocks(int(offset), int(blocks)+1))}
	case strings.Contains(s, inventoryMarker):
		if r.tag == nil {
			return [][]byte{BuildNoTagResponse()}
		}
		return [][]byte{BuildInventoryResponse(r.tag.UID)}
	default:
		return nil
	}
}
