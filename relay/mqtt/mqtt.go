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

// Package mqtt forwards tag events to an MQTT broker
package mqtt

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rfidgeek/go-rfidgeek"
)

// DefaultTopicPrefix is prepended to the event kind to form the topic
const DefaultTopicPrefix = "rfidgeek"

var installLoggers sync.Once

// Config holds MQTT connection settings
type Config struct {
	Host        string `yaml:"host" mapstructure:"host"`
	CACert      string `yaml:"ca_cert" mapstructure:"ca_cert"`
	ClientCert  string `yaml:"client_cert" mapstructure:"client_cert"`
	ClientKey   string `yaml:"client_key" mapstructure:"client_key"`
	ClientID    string `yaml:"client_id" mapstructure:"client_id"`
	TopicPrefix string `yaml:"topic_prefix" mapstructure:"topic_prefix"`
	Port        int    `yaml:"port" mapstructure:"port"`
	QoS         byte   `yaml:"qos" mapstructure:"qos"`
	Retained    bool   `yaml:"retained" mapstructure:"retained"`
}

// Publisher is a rfidgeek.Forwarder that publishes each event to
// <prefix>/<kind>. Without a host it is a disabled no-op.
type Publisher struct {
	client  paho.Client
	prefix  string
	qos     byte
	retain  bool
	enabled bool
}

// New creates a publisher. It returns a disabled publisher if no host is
// configured.
func New(cfg Config) (*Publisher, error) {
	p := &Publisher{
		prefix: cfg.TopicPrefix,
		qos:    cfg.QoS,
		retain: cfg.Retained,
	}
	if p.prefix == "" {
		p.prefix = DefaultTopicPrefix
	}
	if cfg.QoS > 2 {
		return nil, fmt.Errorf("%w: qos %d", rfidgeek.ErrInvalidParameter, cfg.QoS)
	}

	if cfg.Host == "" {
		log.Info().Msg("mqtt: disabled (no host configured)")
		return p, nil
	}

	var broker string
	var tlsConfig *tls.Config
	if cfg.CACert != "" || cfg.ClientCert != "" {
		if cfg.Port == 0 {
			cfg.Port = 8883
		}
		broker = fmt.Sprintf("ssl://%s:%d", cfg.Host, cfg.Port)

		var err error
		tlsConfig, err = buildTLSConfig(cfg)
		if err != nil {
			return nil, fmt.Errorf("build TLS config: %w", err)
		}
	} else {
		if cfg.Port == 0 {
			cfg.Port = 1883
		}
		broker = fmt.Sprintf("tcp://%s:%d", cfg.Host, cfg.Port)
	}

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = fmt.Sprintf("rfidgeek-%d", os.Getpid())
	}

	opts := paho.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetKeepAlive(60 * time.Second).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Warn().Err(err).Msg("mqtt: connection lost")
		}).
		SetOnConnectHandler(func(paho.Client) {
			log.Info().Str("broker", broker).Msg("mqtt: connection established")
		})
	if tlsConfig != nil {
		opts.SetTLSConfig(tlsConfig)
	}

	installLoggers.Do(func() {
		paho.ERROR = pahoLogger{level: zerolog.ErrorLevel}
		paho.CRITICAL = pahoLogger{level: zerolog.ErrorLevel}
		paho.WARN = pahoLogger{level: zerolog.WarnLevel}
	})

	p.client = paho.NewClient(opts)
	p.enabled = true
	return p, nil
}

// NewWithClient wraps an existing client
func NewWithClient(client paho.Client, prefix string) *Publisher {
	if prefix == "" {
		prefix = DefaultTopicPrefix
	}
	return &Publisher{client: client, prefix: prefix, enabled: client != nil}
}

func buildTLSConfig(cfg Config) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12}

	if cfg.CACert != "" {
		caCert, err := os.ReadFile(cfg.CACert)
		if err != nil {
			return nil, fmt.Errorf("read CA cert: %w", err)
		}
		caPool := x509.NewCertPool()
		if !caPool.AppendCertsFromPEM(caCert) {
			return nil, errors.New("no certificates in CA file")
		}
		tlsConfig.RootCAs = caPool
	}

	if cfg.ClientCert != "" && cfg.ClientKey != "" {
		cert, err := tls.LoadX509KeyPair(cfg.ClientCert, cfg.ClientKey)
		if err != nil {
			return nil, fmt.Errorf("load client cert: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	return tlsConfig, nil
}

// Connect connects to the broker. No-op if disabled.
func (p *Publisher) Connect(ctx context.Context) error {
	if !p.enabled {
		return nil
	}
	if err := wait(ctx, p.client.Connect()); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	return nil
}

// Forward publishes ev and waits for the broker to accept it
func (p *Publisher) Forward(ctx context.Context, ev rfidgeek.Event) error {
	if !p.enabled {
		return nil
	}
	topic := p.Topic(ev.Kind)
	if err := wait(ctx, p.client.Publish(topic, p.qos, p.retain, ev.Payload)); err != nil {
		return fmt.Errorf("publish %s: %w", topic, err)
	}
	return nil
}

// Topic returns the topic events of kind are published to
func (p *Publisher) Topic(kind rfidgeek.EventKind) string {
	return p.prefix + "/" + string(kind)
}

// Close disconnects from the broker. No-op if disabled.
func (p *Publisher) Close() error {
	if !p.enabled || p.client == nil {
		return nil
	}
	p.client.Disconnect(250)
	return nil
}

// IsEnabled returns whether a broker is configured
func (p *Publisher) IsEnabled() bool {
	return p.enabled
}

func wait(ctx context.Context, token paho.Token) error {
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pahoLogger routes paho's internal logging to zerolog
type pahoLogger struct {
	level zerolog.Level
}

func (l pahoLogger) Println(v ...any) {
	log.WithLevel(l.level).Str("component", "paho").Msg(fmt.Sprint(v...))
}

func (l pahoLogger) Printf(format string, v ...any) {
	log.WithLevel(l.level).Str("component", "paho").Msgf(format, v...)
}
