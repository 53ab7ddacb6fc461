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

// Package readerconfig loads the reader command table: the hex command
// sequences that initialize the reader and scan for each tag type.
//
// Files use the layout of the vendor's univelop_500b.json. Both JSON and
// YAML are accepted.
package readerconfig

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// ErrConfigMissing reports a command sequence absent from the table
var ErrConfigMissing = errors.New("reader config missing command")

// Init code keys, in the order they are sent to the reader
const (
	KeyInit                 = "init"
	KeyRegisterWriteRequest = "register_write_request"
	KeyAGCEnable            = "agc_enable"
	KeyAMInput              = "am_input"
)

var initCodeOrder = []string{KeyRegisterWriteRequest, KeyAGCEnable, KeyAMInput}

//go:embed univelop_500b.json
var defaultConfig []byte

// Config is the whole command table. It is not modified after loading.
type Config struct {
	Initialize map[string]string   `yaml:"initialize"`
	Protocols  map[string]Protocol `yaml:"protocols"`
}

// Protocol holds the commands for one tag type
type Protocol struct {
	InitCodes map[string]string `yaml:"initcodes"`
	Inventory string            `yaml:"inventory"`
}

// InitCode is one named init sequence
type InitCode struct {
	Name     string
	Sequence string
}

// CommandSet is the resolved set of commands an engine needs for one tag type
type CommandSet struct {
	TagType              string
	Init                 string
	RegisterWriteRequest string
	AGCEnable            string
	AMInput              string
	Inventory            string
}

// InitCodes returns the per-protocol init sequences in send order
func (c *CommandSet) InitCodes() []InitCode {
	return []InitCode{
		{Name: KeyRegisterWriteRequest, Sequence: c.RegisterWriteRequest},
		{Name: KeyAGCEnable, Sequence: c.AGCEnable},
		{Name: KeyAMInput, Sequence: c.AMInput},
	}
}

// Default returns the built-in Univelop 500B command table
func Default() *Config {
	cfg, err := Parse(defaultConfig)
	if err != nil {
		panic(fmt.Sprintf("readerconfig: embedded config is invalid: %v", err))
	}
	return cfg
}

// Load reads a command table from path
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is operator supplied
	if err != nil {
		return nil, fmt.Errorf("failed to read reader config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a command table
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse reader config: %w", err)
	}
	if cfg.Initialize == nil && cfg.Protocols == nil {
		return nil, fmt.Errorf("%w: empty reader config", ErrConfigMissing)
	}
	return &cfg, nil
}

// Commands resolves the command set for tagType. Every command must be
// present and non-empty.
func (c *Config) Commands(tagType string) (*CommandSet, error) {
	initSeq := c.Initialize[KeyInit]
	if initSeq == "" {
		return nil, fmt.Errorf("%w: initialize.%s", ErrConfigMissing, KeyInit)
	}
	proto, ok := c.Protocols[tagType]
	if !ok {
		return nil, fmt.Errorf("%w: protocols.%s", ErrConfigMissing, tagType)
	}
	for _, key := range initCodeOrder {
		if proto.InitCodes[key] == "" {
			return nil, fmt.Errorf("%w: protocols.%s.initcodes.%s", ErrConfigMissing, tagType, key)
		}
	}
	if proto.Inventory == "" {
		return nil, fmt.Errorf("%w: protocols.%s.inventory", ErrConfigMissing, tagType)
	}

	return &CommandSet{
		TagType:              tagType,
		Init:                 initSeq,
		RegisterWriteRequest: proto.InitCodes[KeyRegisterWriteRequest],
		AGCEnable:            proto.InitCodes[KeyAGCEnable],
		AMInput:              proto.InitCodes[KeyAMInput],
		Inventory:            proto.Inventory,
	}, nil
}

// TagTypes lists the tag types the table has commands for, sorted
func (c *Config) TagTypes() []string {
	types := make([]string, 0, len(c.Protocols))
	for t := range c.Protocols {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
