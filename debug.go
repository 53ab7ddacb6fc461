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
	"os"
	"sync/atomic"

	"github.com/rs/zerolog"
)

var pkgLogger atomic.Pointer[zerolog.Logger]

func init() {
	l := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(zerolog.InfoLevel).
		With().Timestamp().Str("component", "rfidgeek").
		Logger()
	pkgLogger.Store(&l)
}

// SetLogger replaces the package logger. Engines created afterwards without
// WithLogger inherit it.
func SetLogger(l zerolog.Logger) {
	pkgLogger.Store(&l)
}

// SetDebugEnabled switches the package logger between debug and info level.
// Like SetLogger it only affects engines created afterwards.
func SetDebugEnabled(enabled bool) {
	lvl := zerolog.InfoLevel
	if enabled {
		lvl = zerolog.DebugLevel
	}
	l := pkgLogger.Load().Level(lvl)
	pkgLogger.Store(&l)
}

// Logger returns the current package logger
func Logger() zerolog.Logger {
	return *pkgLogger.Load()
}
