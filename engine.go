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
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/rfidgeek/go-rfidgeek/readerconfig"
)

// Command names used in logs and WriteError.Op
const (
	cmdInit      = "init"
	cmdInventory = "inventory"
	cmdRead      = "read"
)

// command is one queued write. readSeq ties read phase commands to the
// read that queued them; it is zero for init and inventory commands.
type command struct {
	name    string
	data    []byte
	offset  int
	readSeq uint64
}

type writeResult struct {
	err   error
	cmd   command
	epoch uint64
}

// run is one Start..Stop cycle. Write results are tagged with the epoch they
// were issued under so a completion arriving after Stop is dropped.
type run struct {
	ctx     context.Context
	cancel  context.CancelFunc
	results chan writeResult
	done    chan struct{}
	epoch   uint64
}

// Engine drives one reader: it scans for tags, reads the memory of each new
// ISO15693 tag in chunks and announces arrivals, removals and payloads to
// its relays.
//
// All session state is owned by a single event loop goroutine started by
// Start. Exported methods are safe for concurrent use.
type Engine struct {
	transport         Transport
	profile           TagProfile
	commands          *readerconfig.CommandSet
	config            *Config
	current           *run
	ticker            *time.Ticker
	tickC             <-chan time.Time
	readTimer         *time.Timer
	readC             <-chan time.Time
	log               zerolog.Logger
	relays            MultiRelay
	forwarders        []*ForwardingRelay
	pendingForwarders []pendingForwarder
	queue             []command
	splitter          FrameSplitter
	snapshot          Session
	session           Session
	epoch             uint64
	readSeq           uint64
	lifecycle         sync.Mutex
	snapMu            sync.RWMutex
	inFlight          bool
}

// New creates an engine for transport using the command table in
// readerConfig. It fails with ErrConfigMissing when the table lacks a command
// the selected tag type needs.
func New(transport Transport, readerConfig *readerconfig.Config, opts ...Option) (*Engine, error) {
	if transport == nil {
		return nil, fmt.Errorf("%w: transport is nil", ErrInvalidParameter)
	}
	if readerConfig == nil {
		return nil, fmt.Errorf("%w: reader config is nil", ErrConfigMissing)
	}

	e := &Engine{
		transport: transport,
		config:    DefaultConfig(),
		log:       Logger(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if err := e.config.validate(); err != nil {
		return nil, err
	}

	commands, err := readerConfig.Commands(e.config.TagType)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve reader commands: %w", err)
	}
	e.commands = commands
	e.profile = ProfileFor(e.config.TagType)
	e.log = e.log.With().Str("tag_type", e.profile.Name()).Logger()

	for _, pf := range e.pendingForwarders {
		fcfg := DefaultForwardConfig()
		if pf.config != nil {
			c := *pf.config
			fcfg = &c
		}
		if fcfg.Logger == nil {
			fcfg.Logger = &e.log
		}
		fr := NewForwardingRelay(pf.fwd, fcfg)
		e.forwarders = append(e.forwarders, fr)
		e.relays = append(e.relays, fr)
	}
	e.pendingForwarders = nil

	return e, nil
}

// Subscribe adds a relay. Relays must be registered before Start.
func (e *Engine) Subscribe(r Relay) error {
	if r == nil {
		return fmt.Errorf("%w: relay is nil", ErrInvalidParameter)
	}
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()
	if e.runningLocked() {
		return ErrAlreadyRunning
	}
	e.relays = append(e.relays, r)
	return nil
}

// Start initializes the reader and begins scanning. The init sequence is
// written synchronously; if any write fails Start returns an error wrapping
// ErrInitFailed and the engine stays idle. Cancelling ctx stops the engine.
func (e *Engine) Start(ctx context.Context) error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	if e.runningLocked() {
		return ErrAlreadyRunning
	}
	if !e.transport.IsConnected() {
		return fmt.Errorf("%w: %w", ErrInitFailed, ErrTransportClosed)
	}
	if err := e.initialize(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrInitFailed, err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	e.epoch++
	r := &run{
		ctx:     runCtx,
		cancel:  cancel,
		results: make(chan writeResult, 1),
		done:    make(chan struct{}),
		epoch:   e.epoch,
	}

	e.queue = nil
	e.inFlight = false
	e.splitter.Reset()
	e.session.TransitionToIdle()
	e.session.TransitionToScanning()
	e.armScan()
	e.publishSnapshot()
	e.current = r

	e.log.Info().Dur("scan_interval", e.config.ScanInterval).Msg("scanning started")
	go e.loop(r)
	return nil
}

// Stop returns the engine to idle from any state. It waits for the event
// loop to exit; write completions that arrive afterwards are discarded.
// Stopping an idle engine is a no-op.
func (e *Engine) Stop() error {
	e.lifecycle.Lock()
	defer e.lifecycle.Unlock()

	r := e.current
	if r == nil {
		return nil
	}
	e.current = nil
	r.cancel()
	<-r.done
	e.log.Info().Msg("scanning stopped")
	return nil
}

// Close stops the engine, flushes and closes forwarding relays and closes
// the transport.
func (e *Engine) Close() error {
	_ = e.Stop()

	var errs []error
	for _, fr := range e.forwarders {
		if err := fr.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close forwarder: %w", err))
		}
	}
	if err := e.transport.Close(); err != nil {
		errs = append(errs, fmt.Errorf("failed to close transport: %w", err))
	}
	return errors.Join(errs...)
}

// Snapshot returns a copy of the session as of the last processed event
func (e *Engine) Snapshot() Session {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snapshot.Snapshot()
}

// Mode returns the current acquisition mode
func (e *Engine) Mode() Mode {
	e.snapMu.RLock()
	defer e.snapMu.RUnlock()
	return e.snapshot.Mode
}

// IsRunning reports whether the engine is scanning or reading
func (e *Engine) IsRunning() bool {
	return e.Mode() != ModeIdle
}

// Config returns a copy of the engine configuration
func (e *Engine) Config() Config {
	return *e.config
}

// Profile returns the tag profile selected at construction
func (e *Engine) Profile() TagProfile {
	return e.profile
}

// runningLocked reports whether a run is active. Must hold lifecycle.
func (e *Engine) runningLocked() bool {
	if e.current == nil {
		return false
	}
	select {
	case <-e.current.done:
		// the loop ended on its own (transport closed or ctx cancelled)
		e.current = nil
		return false
	default:
		return true
	}
}

func (e *Engine) initialize(ctx context.Context) error {
	sequence := append([]command{{name: cmdInit, data: []byte(e.commands.Init)}}, e.initCodeCommands()...)
	for _, cmd := range sequence {
		if err := e.transport.Write(ctx, cmd.data); err != nil {
			return &WriteError{Op: cmd.name, Command: string(cmd.data), Err: err}
		}
		e.log.Debug().Str("command", cmd.name).Bytes("data", cmd.data).Msg("wrote command")
	}
	e.log.Info().Msg("reader initialized")
	return nil
}

func (e *Engine) initCodeCommands() []command {
	codes := e.commands.InitCodes()
	cmds := make([]command, 0, len(codes))
	for _, code := range codes {
		cmds = append(cmds, command{name: code.Name, data: []byte(code.Sequence)})
	}
	return cmds
}

func (e *Engine) loop(r *run) {
	defer e.finish(r)

	events := e.transport.Events()
	for {
		select {
		case <-r.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				e.log.Warn().Msg("transport stream ended")
				return
			}
			if !e.handleStreamEvent(r, ev) {
				return
			}
		case <-e.tickC:
			e.onScanTick(r)
		case res := <-r.results:
			e.onWriteComplete(r, res)
		case <-e.readC:
			e.onReadTimeout()
		}
		e.publishSnapshot()
	}
}

func (e *Engine) finish(r *run) {
	e.disarmScan()
	e.disarmReadTimer()
	e.queue = nil
	e.inFlight = false
	e.session.TransitionToIdle()
	e.publishSnapshot()
	r.cancel()
	close(r.done)
}

func (e *Engine) handleStreamEvent(r *run, ev StreamEvent) bool {
	switch ev.Kind {
	case StreamOpen:
		e.log.Info().Msg("port open")
	case StreamData:
		for _, raw := range e.splitter.Feed(ev.Data) {
			e.handleFrame(r, e.profile.Parse(raw))
		}
	case StreamError:
		err := &TransportError{Op: "read", Err: ev.Err}
		e.log.Error().Err(err).Msg("transport error")
		e.relays.Error(err)
	case StreamClose:
		e.log.Info().Msg("port closed")
		return false
	}
	return true
}

func (e *Engine) handleFrame(r *run, frame Frame) {
	switch frame.Kind {
	case FrameNoTag:
		e.onNoTag()
	case FrameTagFound:
		e.onTagFound(r, frame.Value)
	case FrameData:
		e.onData(r, frame.Value)
	default:
		e.log.Debug().Err(ErrUnrecognizedFrame).Str("raw", frame.Raw).Msg("ignoring reader output")
	}
}

func (e *Engine) onTagFound(r *run, id string) {
	if !e.session.RegisterTag(id) {
		e.log.Debug().Str("tag", id).Msg("same tag still present")
		return
	}
	e.log.Info().Str("tag", id).Msg("new tag found")
	e.relays.TagFound(id)

	if e.profile.ChunkedRead() {
		e.disarmScan()
		e.beginRead(r, id)
	}
}

func (e *Engine) onNoTag() {
	if !e.session.ClearTag() {
		e.log.Debug().Msg("no tag")
		return
	}
	if e.session.Mode == ModeReading {
		e.log.Warn().Msg("tag left the field during read")
		e.endRead()
	}
	e.log.Info().Msg("tag removed")
	e.relays.TagRemoved()
}

func (e *Engine) onScanTick(r *run) {
	if e.session.Mode != ModeScanning {
		return
	}
	if e.inFlight || len(e.queue) > 0 {
		e.log.Debug().Msg("previous command pending, skipping inventory")
		return
	}
	e.enqueue(r, command{name: cmdInventory, data: []byte(e.commands.Inventory)})
}

func (e *Engine) onWriteComplete(r *run, res writeResult) {
	if res.epoch != r.epoch || r.ctx.Err() != nil {
		e.log.Debug().Str("command", res.cmd.name).Msg("discarding stale write completion")
		return
	}
	e.inFlight = false

	if res.err == nil {
		e.log.Debug().Str("command", res.cmd.name).Bytes("data", res.cmd.data).Msg("wrote command")
		e.pump(r)
		return
	}

	werr := &WriteError{Op: res.cmd.name, Command: string(res.cmd.data), Err: res.err}
	e.log.Error().Err(werr).Msg("command write failed")
	if e.session.Mode == ModeReading && res.cmd.readSeq == e.readSeq {
		e.queue = nil
		e.endRead()
	} else {
		// a failed scan command does not affect a read queued behind it
		e.dropQueuedFunc(func(cmd command) bool {
			return cmd.readSeq == 0 || cmd.readSeq != e.readSeq
		})
		e.pump(r)
	}
	e.relays.Error(werr)
}

// enqueue appends commands and issues the head if nothing is in flight
func (e *Engine) enqueue(r *run, cmds ...command) {
	e.queue = append(e.queue, cmds...)
	e.pump(r)
}

// pump issues the next queued command. At most one write is outstanding; its
// completion comes back to the loop through r.results.
func (e *Engine) pump(r *run) {
	if e.inFlight || len(e.queue) == 0 || r.ctx.Err() != nil {
		return
	}
	cmd := e.queue[0]
	e.queue = e.queue[1:]
	e.inFlight = true

	go func() {
		err := e.transport.Write(r.ctx, cmd.data)
		r.results <- writeResult{epoch: r.epoch, cmd: cmd, err: err}
	}()
}

func (e *Engine) dropQueued(name string) {
	e.dropQueuedFunc(func(cmd command) bool { return cmd.name == name })
}

// dropQueuedFunc removes every queued command for which drop returns true
func (e *Engine) dropQueuedFunc(drop func(command) bool) {
	kept := e.queue[:0]
	for _, cmd := range e.queue {
		if !drop(cmd) {
			kept = append(kept, cmd)
		}
	}
	e.queue = kept
}

// armScan starts a fresh ticker, so the scan phase restarts after every read
func (e *Engine) armScan() {
	e.disarmScan()
	e.ticker = time.NewTicker(e.config.ScanInterval)
	e.tickC = e.ticker.C
}

func (e *Engine) disarmScan() {
	if e.ticker != nil {
		e.ticker.Stop()
		e.ticker = nil
	}
	e.tickC = nil
}

// armReadTimer gives the current read one timeout to produce its next chunk
func (e *Engine) armReadTimer() {
	e.disarmReadTimer()
	e.readTimer = time.NewTimer(e.config.readTimeout())
	e.readC = e.readTimer.C
}

func (e *Engine) disarmReadTimer() {
	if e.readTimer != nil {
		e.readTimer.Stop()
		e.readTimer = nil
	}
	e.readC = nil
}

func (e *Engine) publishSnapshot() {
	s := e.session.Snapshot()
	e.snapMu.Lock()
	e.snapshot = s
	e.snapMu.Unlock()
}
