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
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rfidgeek/go-rfidgeek"
	"github.com/rfidgeek/go-rfidgeek/transport/uart"
)

const envPrefix = "RFIDGEEK"

// Settings keys. Top level keys double as flag names.
const (
	keyConfig       = "config"
	keyDebug        = "debug"
	keyPort         = "port"
	keyTagType      = "tag-type"
	keyScanInterval = "scan-interval"
	keyReadTimeout  = "read-timeout"
	keyLengthToRead = "length-to-read"
	keyBytesPerRead = "bytes-per-read"
	keyReaderConfig = "reader-config"
	keyWebsocket    = "websocket"
	keyWebsocketURL = "websocket-url"
	keyServe        = "serve"
	keyMQTTHost     = "mqtt.host"
	keyMQTTPort     = "mqtt.port"
	keyMQTTPrefix   = "mqtt.topic_prefix"
	keyMQTTClientID = "mqtt.client_id"
	keyMQTTCACert   = "mqtt.ca_cert"
	keyMQTTCert     = "mqtt.client_cert"
	keyMQTTKey      = "mqtt.client_key"
	keyIgnorePaths  = "ignore-paths"
	keyShowAllPorts = "all"
)

// app carries what the commands share. openTransport is replaced in tests.
type app struct {
	v             *viper.Viper
	openTransport func(portName string) (rfidgeek.Transport, error)
}

func newApp() *app {
	return &app{
		v: viper.New(),
		openTransport: func(portName string) (rfidgeek.Transport, error) {
			return uart.Open(portName)
		},
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "rfidgeek",
		Short:        "Scan and read RFID tags with an RFIDgeek reader",
		Long:         "rfidgeek drives a TRF7970A based RFIDgeek/Univelop reader over a serial port, announces tags as they arrive and leave, and reads the memory of ISO15693 tags.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.loadConfig(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(keyConfig, "", "config file (yaml, json or toml)")
	flags.Bool(keyDebug, false, "enable debug logging")
	_ = a.v.BindPFlag(keyDebug, flags.Lookup(keyDebug))

	rootCmd.AddCommand(
		newRunCmd(a),
		newPortsCmd(a),
		newDecodeCmd(),
	)
	return rootCmd
}

// loadConfig layers flags over environment over the optional config file
func (a *app) loadConfig(cmd *cobra.Command) error {
	a.v.SetEnvPrefix(envPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	a.v.AutomaticEnv()

	path, _ := cmd.Flags().GetString(keyConfig)
	if path != "" {
		a.v.SetConfigFile(path)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else {
		a.v.SetConfigName("rfidgeek")
		a.v.AddConfigPath(".")
		if home, err := os.UserConfigDir(); err == nil {
			a.v.AddConfigPath(home + "/rfidgeek")
		}
		var notFound viper.ConfigFileNotFoundError
		if err := a.v.ReadInConfig(); err != nil && !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setupLogging(cmd, a.v.GetBool(keyDebug))
	return nil
}

func setupLogging(cmd *cobra.Command, debug bool) {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(level).With().Timestamp().Logger()
	log.Logger = logger
	rfidgeek.SetLogger(logger.With().Str("component", "rfidgeek").Logger())
	rfidgeek.SetDebugEnabled(debug)
}
