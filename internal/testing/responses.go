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

// Package testing provides reader response builders and a simulated reader
// for tests of the acquisition engine.
package testing

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Sample tag identifiers as the reader prints them
const (
	TestISO15693UID  = "E0040100078E2A4B"
	TestISO15693UID2 = "E00401000A11B2C3"
	TestISO14443AUID = "04A22B1A5C6480"
)

// BuildInventoryResponse is the single-slot inventory answer for a present tag
func BuildInventoryResponse(uid string) []byte {
	return []byte(fmt.Sprintf("[%s,5C]\r\n", strings.ToUpper(uid)))
}

// BuildNoTagResponse is the inventory answer for an empty field
func BuildNoTagResponse() []byte {
	return []byte("[,40]\r\n")
}

// BuildDataResponse is a successful read answer: status byte 00 then data
func BuildDataResponse(data []byte) []byte {
	return []byte("[00" + strings.ToUpper(hex.EncodeToString(data)) + "]\r\n")
}

// BuildProximityResponse is what the reader prints when a non-ISO15693 tag
// is in the field
func BuildProximityResponse(uid string) []byte {
	return []byte("[" + uid + "]\r\n")
}

// BuildAckResponse is the reader echo for register and init writes
func BuildAckResponse() []byte {
	return []byte("Register write request.\r\n[]\r\n")
}
