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

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rfidgeek/go-rfidgeek"
	testutil "github.com/rfidgeek/go-rfidgeek/internal/testing"
)

const memory = "HELLO!!!"

func newTestApp(reader *testutil.VirtualReader) *app {
	a := newApp()
	a.openTransport = func(string) (rfidgeek.Transport, error) {
		return rfidgeek.NewMockTransportWithFunc(reader.Respond), nil
	}
	return a
}

func executeCLI(ctx context.Context, a *app, args ...string) (string, error) {
	root := newRootCmd(a)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestRunReadsTag(t *testing.T) {
	reader := testutil.NewVirtualReader()
	reader.Insert(testutil.NewVirtualTag(testutil.TestISO15693UID, []byte(memory)))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	out, err := executeCLI(ctx, newTestApp(reader), "run", "--scan-interval", "10ms")
	require.NoError(t, err)

	assert.Contains(t, out, "tag "+testutil.TestISO15693UID+"\n")
	assert.Contains(t, out, `data 48454C4C4F212121 "HELLO!!!"`)
	assert.Equal(t, 1, strings.Count(out, "data "))
}

func TestRunLengthFromEnvironment(t *testing.T) {
	t.Setenv("RFIDGEEK_LENGTH_TO_READ", "4")

	reader := testutil.NewVirtualReader()
	reader.Insert(testutil.NewVirtualTag(testutil.TestISO15693UID, []byte(memory)))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	out, err := executeCLI(ctx, newTestApp(reader), "run", "--scan-interval", "10ms")
	require.NoError(t, err)

	assert.Contains(t, out, `data 48454C4C "HELL"`)
	assert.Equal(t, []int{0, 2}, reader.ReadOffsets())
}

func TestRunConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rfidgeek.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scan-interval: 10ms\nlength-to-read: 2\n"), 0o600))

	reader := testutil.NewVirtualReader()
	reader.Insert(testutil.NewVirtualTag(testutil.TestISO15693UID, []byte(memory)))

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	out, err := executeCLI(ctx, newTestApp(reader), "--config", path, "run")
	require.NoError(t, err)

	assert.Contains(t, out, `data 4845 "HE"`)
}

func TestRunMissingConfigFile(t *testing.T) {
	reader := testutil.NewVirtualReader()

	_, err := executeCLI(context.Background(), newTestApp(reader),
		"--config", filepath.Join(t.TempDir(), "missing.yaml"), "run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestRunInvalidSettings(t *testing.T) {
	reader := testutil.NewVirtualReader()

	_, err := executeCLI(context.Background(), newTestApp(reader), "run", "--length-to-read", "0")
	require.ErrorIs(t, err, rfidgeek.ErrInvalidParameter)
}

func TestRunOpenFailure(t *testing.T) {
	a := newApp()
	a.openTransport = func(string) (rfidgeek.Transport, error) {
		return nil, rfidgeek.ErrTransportOpen
	}

	_, err := executeCLI(context.Background(), a, "run", "--port", "/dev/nothing")
	require.ErrorIs(t, err, rfidgeek.ErrTransportOpen)
	assert.Contains(t, err.Error(), "/dev/nothing")
}

func TestRunFailsBeforeConnectingRelays(t *testing.T) {
	// an unreachable broker would hold the command for the connect timeout
	mqttArgs := []string{"--mqtt-host", "127.0.0.1", "--mqtt-port", "1"}

	failOpen := newApp()
	failOpen.openTransport = func(string) (rfidgeek.Transport, error) {
		return nil, rfidgeek.ErrTransportOpen
	}
	start := time.Now()
	_, err := executeCLI(context.Background(), failOpen, append([]string{"run"}, mqttArgs...)...)
	require.ErrorIs(t, err, rfidgeek.ErrTransportOpen)
	assert.Less(t, time.Since(start), 3*time.Second)

	reader := testutil.NewVirtualReader()
	start = time.Now()
	_, err = executeCLI(context.Background(), newTestApp(reader),
		append([]string{"run", "--length-to-read", "0"}, mqttArgs...)...)
	require.ErrorIs(t, err, rfidgeek.ErrInvalidParameter)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestRunUnknownReaderConfig(t *testing.T) {
	reader := testutil.NewVirtualReader()

	_, err := executeCLI(context.Background(), newTestApp(reader),
		"run", "--reader-config", filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
}

func TestDecode(t *testing.T) {
	out, err := executeCLI(context.Background(), newApp(), "decode", "48454C4C4F575F4F4B")
	require.NoError(t, err)

	assert.Contains(t, out, "bytes: 9\n")
	assert.Contains(t, out, `text: "HELLO"`)
}

func TestDecodeInvalidHex(t *testing.T) {
	_, err := executeCLI(context.Background(), newApp(), "decode", "XYZ")
	require.Error(t, err)

	_, err = executeCLI(context.Background(), newApp(), "decode")
	require.Error(t, err)
}

func TestPrintRelay(t *testing.T) {
	var out bytes.Buffer
	relay := newPrintRelay(&out)

	relay.TagFound("ABC")
	relay.TagRemoved()
	relay.DataReady("4142")
	relay.Error(errors.New("ignored"))

	assert.Equal(t, "tag ABC\nremoved\ndata 4142 \"AB\"\n", out.String())
}
