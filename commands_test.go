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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeReadCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		want      string
		offset    int
		chunkSize int
	}{
		{offset: 0, chunkSize: 1, want: "010C00030418002300010000"},
		{offset: 2, chunkSize: 1, want: "010C00030418002302010000"},
		{offset: 10, chunkSize: 3, want: "010C0003041800230A030000"},
		{offset: 255, chunkSize: 0, want: "010C000304180023FF000000"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, string(EncodeReadCommand(tt.offset, tt.chunkSize)))
	}
}

func TestEncodeReadCommandPanicsOutOfRange(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { EncodeReadCommand(256, 1) })
	assert.Panics(t, func() { EncodeReadCommand(-1, 1) })
	assert.Panics(t, func() { EncodeReadCommand(0, 256) })
}

func TestTerminator(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []byte("W_OK"), terminator)
}
