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

// Package detection finds serial ports a reader may be attached to
package detection

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
	"go.bug.st/serial/enumerator"
)

// knownReaders are USB bridges RFIDgeek boards are built with
var knownReaders = map[string]string{
	"0403:6001": "FTDI FT232R",
	"0403:6015": "FTDI FT231X",
	"0451:BEF3": "TI TRF7970A EVM",
}

// Port is a serial port that may have a reader behind it
type Port struct {
	Name         string
	VID          string
	PID          string
	SerialNumber string
	Product      string
	// Reader names the bridge when the VID:PID is one readers ship with
	Reader string
	IsUSB  bool
}

// Options controls which ports ListPorts returns
type Options struct {
	Blocklist   []string
	IgnorePaths []string
	// USBOnly drops ports that are not USB serial devices
	USBOnly bool
}

// DefaultOptions skips blocklisted devices and built-in UARTs
func DefaultOptions() Options {
	return Options{
		Blocklist: DefaultBlocklist(),
		USBOnly:   true,
	}
}

// ListPorts enumerates serial ports and returns the candidates, known
// reader bridges first
func ListPorts(opts Options) ([]Port, error) {
	details, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate serial ports: %w", err)
	}
	return filterPorts(details, opts), nil
}

func filterPorts(details []*enumerator.PortDetails, opts Options) []Port {
	ports := make([]Port, 0, len(details))
	for _, d := range details {
		if d == nil || d.Name == "" {
			continue
		}
		vidpid := FormatVIDPID(d.VID, d.PID)
		switch {
		case opts.USBOnly && !d.IsUSB:
			log.Debug().Str("port", d.Name).Msg("detection: skipping non-USB port")
			continue
		case IsPathIgnored(d.Name, opts.IgnorePaths):
			log.Debug().Str("port", d.Name).Msg("detection: port is ignored")
			continue
		case IsBlocked(vidpid, opts.Blocklist):
			log.Debug().Str("port", d.Name).Str("vidpid", vidpid).Msg("detection: device is blocklisted")
			continue
		}
		ports = append(ports, Port{
			Name:         d.Name,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
			Product:      d.Product,
			Reader:       knownReaders[vidpid],
			IsUSB:        d.IsUSB,
		})
	}

	sort.SliceStable(ports, func(i, j int) bool {
		return ports[i].Reader != "" && ports[j].Reader == ""
	})
	return ports
}
