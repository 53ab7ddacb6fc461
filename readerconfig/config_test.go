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

package readerconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := Default()
	assert.Equal(t, []string{"ISO14443A", "ISO14443B", "ISO15693"}, cfg.TagTypes())

	cmds, err := cfg.Commands("ISO15693")
	require.NoError(t, err)
	assert.Equal(t, "0108000304FF0000", cmds.Init)
	assert.Equal(t, "010B000304142601000000", cmds.Inventory)
	assert.Equal(t, []InitCode{
		{Name: KeyRegisterWriteRequest, Sequence: "010C00030410002101020000"},
		{Name: KeyAGCEnable, Sequence: "0109000304F0000000"},
		{Name: KeyAMInput, Sequence: "0109000304F1FF0000"},
	}, cmds.InitCodes())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		tagType string
		wantErr error
	}{
		{name: "yaml", path: "testdata/minimal.yaml", tagType: "ISO15693"},
		{name: "json", path: "univelop_500b.json", tagType: "ISO14443A"},
		{name: "unknown tag type", path: "testdata/minimal.yaml", tagType: "ISO14443A", wantErr: ErrConfigMissing},
		{name: "missing inventory", path: "testdata/missing_inventory.json", tagType: "ISO15693", wantErr: ErrConfigMissing},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Load(tt.path)
			require.NoError(t, err)

			cmds, err := cfg.Commands(tt.tagType)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, cmds)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.tagType, cmds.TagType)
			assert.NotEmpty(t, cmds.Inventory)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load("testdata/does_not_exist.json")
	require.Error(t, err)
}

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()
		_, err := Parse([]byte("{}"))
		require.ErrorIs(t, err, ErrConfigMissing)
	})

	t.Run("malformed", func(t *testing.T) {
		t.Parallel()
		_, err := Parse([]byte("initialize: [unterminated"))
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrConfigMissing)
	})

	t.Run("missing init names key", func(t *testing.T) {
		t.Parallel()
		cfg, err := Parse([]byte(`{"initialize": {}, "protocols": {"ISO15693": {"inventory": "01"}}}`))
		require.NoError(t, err)
		_, err = cfg.Commands("ISO15693")
		require.ErrorIs(t, err, ErrConfigMissing)
		assert.Contains(t, err.Error(), "initialize.init")
	})

	t.Run("missing init code names key", func(t *testing.T) {
		t.Parallel()
		cfg, err := Parse([]byte(`{"initialize": {"init": "01"}, "protocols": {"ISO15693": {"initcodes": {"register_write_request": "02"}, "inventory": "03"}}}`))
		require.NoError(t, err)
		_, err = cfg.Commands("ISO15693")
		require.ErrorIs(t, err, ErrConfigMissing)
		assert.Contains(t, err.Error(), "initcodes.agc_enable")
	})
}
