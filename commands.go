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
)

// Read command framing. The reader takes commands as ASCII hex: a fixed
// ISO15693 read-multiple-blocks prefix, the start block and the block count,
// then a two byte suffix.
const (
	readCommandPrefix = "010C000304180023"
	readCommandSuffix = "0000"

	maxCommandByte = 0xFF
)

// terminator marks end-of-data on tags that stop short of the nominal length ("W_OK")
var terminator = []byte{0x57, 0x5F, 0x4F, 0x4B}

// EncodeReadCommand builds the read command for offset and chunkSize. Both
// must fit in one byte; anything else is a programming error and panics.
func EncodeReadCommand(offset, chunkSize int) []byte {
	if offset < 0 || offset > maxCommandByte {
		panic(fmt.Sprintf("rfidgeek: read offset %d out of range", offset))
	}
	if chunkSize < 0 || chunkSize > maxCommandByte {
		panic(fmt.Sprintf("rfidgeek: read chunk size %d out of range", chunkSize))
	}
	return []byte(fmt.Sprintf("%s%02X%02X%s", readCommandPrefix, offset, chunkSize, readCommandSuffix))
}
