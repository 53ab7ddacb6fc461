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

/*
Package rfidgeek drives RFIDgeek/Univelop readers built around the TI
TRF7970A. The engine scans for tags with periodic inventory commands,
announces tags as they arrive and leave, and reads the memory of ISO15693
tags in fixed offset steps until the configured length or the W_OK
terminator has been received.

The reader speaks a hex text protocol. Every command is an ASCII hex
string and every response a bracketed line such as "[E0040100078E2A4B,5C]"
for an inventory hit or "[,40]" when no tag answered.

Basic Usage:

	import (
	    "github.com/rfidgeek/go-rfidgeek"
	    "github.com/rfidgeek/go-rfidgeek/readerconfig"
	    "github.com/rfidgeek/go-rfidgeek/transport/uart"
	)

	transport, err := uart.Open("/dev/ttyUSB0")
	if err != nil {
	    log.Fatal(err)
	}

	engine, err := rfidgeek.New(transport, readerconfig.Default(),
	    rfidgeek.WithScanInterval(500*time.Millisecond),
	    rfidgeek.WithLengthToRead(16),
	    rfidgeek.WithRelay(rfidgeek.Callbacks{
	        OnTagFound:   func(id string) { fmt.Println("tag", id) },
	        OnTagRemoved: func() { fmt.Println("removed") },
	        OnDataReady:  func(payload string) { fmt.Println("data", payload) },
	    }),
	)
	if err != nil {
	    log.Fatal(err)
	}
	defer engine.Close()

	if err := engine.Start(ctx); err != nil {
	    log.Fatal(err)
	}

Relays:

Relays are called from the engine goroutine and must not block. Remote
consumers are attached with WithForwarder, which queues events and delivers
them from a separate goroutine. The relay/ws and relay/mqtt packages
provide WebSocket and MQTT forwarders.

Tag Types:

ISO15693 tags get the full read cycle. ISO14443A and ISO14443B tags are
only announced and removed; their memory is not read.

Error Handling:

Errors reported to relays can be inspected:

	if rfidgeek.IsRecoverable(err) {
	    // the engine keeps scanning
	}

Thread Safety:

Engine methods are safe for concurrent use. Relays run on a single
goroutine, one event at a time.
*/
package rfidgeek
