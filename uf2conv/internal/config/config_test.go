// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddedgo/uf2tools/uf2conv/internal/conv"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/uf2"
)

func writeFile(t *testing.T, path, text string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, `
family: rp2040
address: 0x10000000
size: 256
fixed: true
pad: 0x00
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, Validate(cfg))
	assert.Equal(t, "rp2040", cfg.Family)
	assert.Equal(t, uint32(0x10000000), cfg.AddressValue())
	assert.Equal(t, "info", cfg.LogLevel, "default kept")

	p, err := cfg.Params(conv.ToUF2)
	require.NoError(t, err)
	assert.Equal(t, conv.ToUF2, p.Direction)
	assert.Equal(t, uint32(0xe48bff56), p.FamilyID)
	assert.Equal(t, uint32(uf2.FamilyIDPresent), p.Flags)
	assert.Equal(t, uint32(0x10000000), p.BaseAddress)
	assert.True(t, p.ShortTail)
	assert.False(t, p.Strict)
	pad, err := cfg.PadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0), pad)
}

func TestLoadEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadUnknownField(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	writeFile(t, path, "chunk: 12\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mod     func(c *Config)
		wantErr string
	}{
		{"defaults", func(c *Config) {}, ""},
		{"family number", func(c *Config) { c.Family = "0x1234" }, ""},
		{"bad family", func(c *Config) { c.Family = "z80" }, "bad family"},
		{"bad address", func(c *Config) { c.Address = "0x100000000" }, "address"},
		{"bad flags", func(c *Config) { c.Flags = "-1" }, "flags"},
		{"size zero", func(c *Config) { c.Size = 0 }, "size"},
		{"size big", func(c *Config) { c.Size = 477 }, "size"},
		{"size max", func(c *Config) { c.Size = 476 }, ""},
		{"bad pad", func(c *Config) { c.Pad = "256" }, "pad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mod(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
			_, err = cfg.Params(conv.ToBin)
			assert.Error(t, err)
		})
	}
}

func TestFind(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, FileName), "size: 128\n")
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	t.Setenv(EnvName, "")

	t.Chdir(sub)
	p, err := Find()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, FileName), p)

	cfg, path, err := FindAndLoad()
	require.NoError(t, err)
	assert.Equal(t, p, path)
	assert.Equal(t, 128, cfg.Size)

	// go.mod stops the search
	writeFile(t, filepath.Join(root, "a", "go.mod"), "module a\n")
	p, err = Find()
	require.NoError(t, err)
	assert.Empty(t, p)
	cfg, path, err = FindAndLoad()
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.Equal(t, Default(), cfg)
}

func TestFindEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preset.yaml")
	writeFile(t, path, "size: 900\n")
	t.Setenv(EnvName, path)
	p, err := Find()
	require.NoError(t, err)
	assert.Equal(t, path, p)
	_, _, err = FindAndLoad()
	assert.ErrorContains(t, err, "size")
}
