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

// Package payload interprets the hex data an engine reports for a tag read.
//
// A read delivers raw tag memory. Library tags carry plain ASCII; NFC Forum
// type 5 tags carry an NDEF message behind a capability container.
package payload

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/hsanjuan/go-ndef"
)

// ErrNoNDEF is returned when the memory holds no NDEF message TLV
var ErrNoNDEF = errors.New("no NDEF message found")

const (
	ccMagic       = 0xE1
	ccSize        = 4
	tlvNull       = 0x00
	tlvNDEF       = 0x03
	tlvTerminator = 0xFE
	tlvLongLength = 0xFF
)

var terminator = []byte("W_OK")

// Record is one decoded NDEF record
type Record struct {
	Type  string
	Value string
	TNF   byte
}

// Payload is a decoded tag read
type Payload struct {
	Text    string
	Raw     []byte
	Records []Record
}

// Decode parses the hex payload reported by the engine. NDEF decoding is
// best effort: a payload without a message still decodes.
func Decode(hexPayload string) (*Payload, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(hexPayload))
	if err != nil {
		return nil, fmt.Errorf("invalid hex payload: %w", err)
	}

	p := &Payload{Raw: raw, Text: Text(raw)}
	if records, err := ParseNDEF(raw); err == nil {
		p.Records = records
	}
	return p, nil
}

// Text returns the printable ASCII content of raw, cut at the W_OK
// terminator and with padding removed
func Text(raw []byte) string {
	if i := bytes.Index(raw, terminator); i >= 0 {
		raw = raw[:i]
	}
	var b strings.Builder
	for _, c := range raw {
		if c >= 0x20 && c < 0x7F {
			_ = b.WriteByte(c)
		}
	}
	return strings.TrimSpace(b.String())
}

// ParseNDEF finds the NDEF message TLV in tag memory and decodes its records
func ParseNDEF(raw []byte) ([]Record, error) {
	msg, err := findMessage(raw)
	if err != nil {
		return nil, err
	}

	var m ndef.Message
	if _, err := m.Unmarshal(msg); err != nil {
		return nil, fmt.Errorf("failed to decode NDEF message: %w", err)
	}

	records := make([]Record, 0, len(m.Records))
	for _, r := range m.Records {
		rec := Record{TNF: r.TNF(), Type: r.Type()}
		if pl, err := r.Payload(); err == nil && pl != nil {
			rec.Value = pl.String()
		}
		records = append(records, rec)
	}
	return records, nil
}

// findMessage walks the TLV area that follows the capability container
func findMessage(raw []byte) ([]byte, error) {
	i := 0
	if len(raw) >= ccSize && raw[0] == ccMagic {
		i = ccSize
	}

	for i < len(raw) {
		tag := raw[i]
		i++
		switch tag {
		case tlvNull:
			continue
		case tlvTerminator:
			return nil, ErrNoNDEF
		}

		if i >= len(raw) {
			break
		}
		length := int(raw[i])
		i++
		if length == tlvLongLength {
			if i+2 > len(raw) {
				break
			}
			length = int(raw[i])<<8 | int(raw[i+1])
			i += 2
		}
		if i+length > len(raw) {
			return nil, fmt.Errorf("%w: TLV length %d exceeds data", ErrNoNDEF, length)
		}
		if tag == tlvNDEF {
			return raw[i : i+length], nil
		}
		i += length
	}
	return nil, ErrNoNDEF
}
