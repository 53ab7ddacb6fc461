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
	"encoding/hex"
	"fmt"
	"strings"
)

// beginRead starts the chunked read loop for a newly registered tag
func (e *Engine) beginRead(r *run, tagID string) {
	e.session.TransitionToReading()
	e.dropQueued(cmdInventory)
	e.readSeq++

	cmds := make([]command, 0, 4)
	if e.profile.ReinitBeforeRead() {
		for _, cmd := range e.initCodeCommands() {
			cmd.readSeq = e.readSeq
			cmds = append(cmds, cmd)
		}
	}
	cmds = append(cmds, e.readCommand())
	e.armReadTimer()

	e.log.Debug().Str("tag", tagID).Int("offset", e.session.ReadOffset).Msg("starting read loop")
	e.enqueue(r, cmds...)
}

func (e *Engine) readCommand() command {
	return command{
		name:    cmdRead,
		data:    EncodeReadCommand(e.session.ReadOffset, e.config.BytesPerRead),
		offset:  e.session.ReadOffset,
		readSeq: e.readSeq,
	}
}

// onData consumes one data chunk. The read is complete when the configured
// length is reached or the terminator shows up; otherwise the next chunk is
// requested one block past the end of this one.
func (e *Engine) onData(r *run, chunk string) {
	if e.session.Mode != ModeReading {
		e.log.Debug().Str("chunk", chunk).Msg("data outside read loop")
		return
	}

	decoded, err := hex.DecodeString(chunk)
	if err != nil {
		e.log.Warn().Err(err).Str("chunk", chunk).Msg("undecodable data chunk")
		return
	}
	e.session.AppendChunk(decoded)
	e.log.Debug().Int("offset", e.session.ReadOffset).Str("chunk", chunk).Msg("data chunk")

	if e.readComplete() {
		e.completeRead()
		return
	}

	step := e.config.BytesPerRead + 1
	next := e.session.ReadOffset + step
	if next > maxCommandByte {
		e.abortRead(fmt.Errorf("%w: next offset %d", ErrOffsetOverflow, next))
		return
	}
	e.session.AdvanceOffset(step)
	e.armReadTimer()
	e.enqueue(r, e.readCommand())
}

// onReadTimeout abandons a read whose next chunk never arrived, for example
// because the reply was lost or carried an error status
func (e *Engine) onReadTimeout() {
	e.readC = nil
	if e.session.Mode != ModeReading {
		return
	}
	e.splitter.Reset()
	e.abortRead(fmt.Errorf("%w: no data for offset %d within %v",
		ErrReadTimeout, e.session.ReadOffset, e.config.readTimeout()))
}

func (e *Engine) readComplete() bool {
	buf := e.session.ReadBuffer
	return len(buf) >= e.config.LengthToRead || bytes.Contains(buf, terminator)
}

func (e *Engine) completeRead() {
	payload := strings.ToUpper(hex.EncodeToString(e.session.ReadBuffer))
	e.log.Info().Str("tag", e.session.CurrentTagID).Str("data", payload).Msg("full tag received")
	e.endRead()
	e.relays.DataReady(payload)
}

func (e *Engine) abortRead(err error) {
	e.log.Error().Err(err).Str("tag", e.session.CurrentTagID).Msg("read aborted")
	e.endRead()
	e.relays.Error(err)
}

// endRead leaves the read loop and re-arms scanning
func (e *Engine) endRead() {
	e.session.TransitionToScanning()
	e.dropQueuedFunc(func(cmd command) bool { return cmd.readSeq != 0 })
	e.disarmReadTimer()
	e.armScan()
}
