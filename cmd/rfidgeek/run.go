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
	"context"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/rfidgeek/go-rfidgeek"
	"github.com/rfidgeek/go-rfidgeek/payload"
	"github.com/rfidgeek/go-rfidgeek/readerconfig"
	"github.com/rfidgeek/go-rfidgeek/relay/mqtt"
	"github.com/rfidgeek/go-rfidgeek/relay/ws"
	"github.com/rfidgeek/go-rfidgeek/transport/uart"
)

func newRunCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Scan for tags until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.run(ctx, cmd.OutOrStdout())
		},
	}

	defaults := rfidgeek.DefaultConfig()
	flags := cmd.Flags()
	flags.String(keyPort, uart.DefaultPortName, "serial port the reader is attached to")
	flags.String(keyTagType, defaults.TagType, "tag type to scan for (ISO15693, ISO14443A, ...)")
	flags.Duration(keyScanInterval, defaults.ScanInterval, "time between inventory commands")
	flags.Duration(keyReadTimeout, 0, "time a read waits for each chunk (default 5 scan intervals)")
	flags.Int(keyLengthToRead, defaults.LengthToRead, "bytes of tag memory that make a complete read")
	flags.Int(keyBytesPerRead, defaults.BytesPerRead, "block count sent with each read command")
	flags.String(keyReaderConfig, "", "reader command table (default: built-in Univelop 500B)")
	flags.Bool(keyWebsocket, false, "push events to a WebSocket server")
	flags.String(keyWebsocketURL, ws.DefaultURL, "WebSocket server to push events to")
	flags.String(keyServe, "", "also run a WebSocket broadcast hub on this address (e.g. :8080)")
	flags.String("mqtt-host", "", "MQTT broker host (disabled when empty)")
	flags.Int("mqtt-port", 0, "MQTT broker port (default 1883, 8883 with TLS)")
	flags.String("mqtt-topic-prefix", mqtt.DefaultTopicPrefix, "MQTT topic prefix")
	flags.String("mqtt-client-id", "", "MQTT client id")
	flags.String("mqtt-ca-cert", "", "CA certificate for MQTT over TLS")
	flags.String("mqtt-client-cert", "", "client certificate for MQTT over TLS")
	flags.String("mqtt-client-key", "", "client key for MQTT over TLS")

	for _, key := range []string{
		keyPort, keyTagType, keyScanInterval, keyReadTimeout, keyLengthToRead, keyBytesPerRead,
		keyReaderConfig, keyWebsocket, keyWebsocketURL, keyServe,
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(key))
	}
	for key, flag := range map[string]string{
		keyMQTTHost:     "mqtt-host",
		keyMQTTPort:     "mqtt-port",
		keyMQTTPrefix:   "mqtt-topic-prefix",
		keyMQTTClientID: "mqtt-client-id",
		keyMQTTCACert:   "mqtt-ca-cert",
		keyMQTTCert:     "mqtt-client-cert",
		keyMQTTKey:      "mqtt-client-key",
	} {
		_ = a.v.BindPFlag(key, flags.Lookup(flag))
	}
	return cmd
}

func (a *app) run(ctx context.Context, out io.Writer) error {
	readerConfig := readerconfig.Default()
	if path := a.v.GetString(keyReaderConfig); path != "" {
		cfg, err := readerconfig.Load(path)
		if err != nil {
			return err
		}
		readerConfig = cfg
	}

	portName := a.v.GetString(keyPort)
	transport, err := a.openTransport(portName)
	if err != nil {
		return fmt.Errorf("failed to open reader on %s: %w", portName, err)
	}

	engine, err := rfidgeek.New(transport, readerConfig,
		rfidgeek.WithConfig(&rfidgeek.Config{
			TagType:      a.v.GetString(keyTagType),
			ScanInterval: a.v.GetDuration(keyScanInterval),
			ReadTimeout:  a.v.GetDuration(keyReadTimeout),
			LengthToRead: a.v.GetInt(keyLengthToRead),
			BytesPerRead: a.v.GetInt(keyBytesPerRead),
		}),
		rfidgeek.WithRelay(newPrintRelay(out)),
	)
	if err != nil {
		_ = transport.Close()
		return err
	}

	// remote relays are only set up once the reader is usable
	var relays []*rfidgeek.ForwardingRelay
	defer func() {
		if err := engine.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close engine")
		}
		for _, fr := range relays {
			if err := fr.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close forwarder")
			}
		}
	}()

	fwds, err := a.forwarders(ctx)
	if err != nil {
		return err
	}
	for _, fwd := range fwds {
		fr := rfidgeek.NewForwardingRelay(fwd, nil)
		relays = append(relays, fr)
		if err := engine.Subscribe(fr); err != nil {
			return err
		}
	}

	if err := engine.Start(ctx); err != nil {
		return err
	}
	log.Info().Str("port", portName).Str("tag_type", engine.Profile().Name()).Msg("reader running")

	<-ctx.Done()
	return nil
}

// forwarders builds the remote relays selected by the settings. On error the
// ones already built are closed.
func (a *app) forwarders(ctx context.Context) (fwds []rfidgeek.Forwarder, err error) {
	defer func() {
		if err == nil {
			return
		}
		for _, fwd := range fwds {
			_ = fwd.Close()
		}
		fwds = nil
	}()

	if addr := a.v.GetString(keyServe); addr != "" {
		hub := ws.NewHub()
		go func() {
			if err := hub.ListenAndServe(ctx, addr); err != nil {
				log.Error().Err(err).Msg("websocket hub stopped")
			}
		}()
		fwds = append(fwds, hub)
	}

	if a.v.GetBool(keyWebsocket) {
		fwds = append(fwds, ws.NewClient(a.v.GetString(keyWebsocketURL)))
	}

	publisher, err := mqtt.New(mqtt.Config{
		Host:        a.v.GetString(keyMQTTHost),
		Port:        a.v.GetInt(keyMQTTPort),
		TopicPrefix: a.v.GetString(keyMQTTPrefix),
		ClientID:    a.v.GetString(keyMQTTClientID),
		CACert:      a.v.GetString(keyMQTTCACert),
		ClientCert:  a.v.GetString(keyMQTTCert),
		ClientKey:   a.v.GetString(keyMQTTKey),
	})
	if err != nil {
		return fwds, fmt.Errorf("mqtt: %w", err)
	}
	if publisher.IsEnabled() {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := publisher.Connect(connectCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			_ = publisher.Close()
			return fwds, fmt.Errorf("mqtt: %w", err)
		}
		fwds = append(fwds, publisher)
	}

	return fwds, nil
}

// newPrintRelay writes one line per event
func newPrintRelay(out io.Writer) rfidgeek.Relay {
	return rfidgeek.Callbacks{
		OnTagFound: func(id string) {
			_, _ = fmt.Fprintf(out, "tag %s\n", id)
		},
		OnTagRemoved: func() {
			_, _ = fmt.Fprintln(out, "removed")
		},
		OnDataReady: func(hexPayload string) {
			text := ""
			if p, err := payload.Decode(hexPayload); err == nil {
				text = p.Text
			}
			_, _ = fmt.Fprintf(out, "data %s %q\n", hexPayload, text)
		},
		OnError: func(err error) {
			log.Warn().Err(err).Bool("recoverable", rfidgeek.IsRecoverable(err)).Msg("reader error")
		},
	}
}
