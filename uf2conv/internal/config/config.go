// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads uf2conv.yaml presets. A preset provides the default
// values of the command line options for a project.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/embeddedgo/uf2tools/uf2conv/internal/conv"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/uf2"
)

// Config mirrors the options of the uf2, bin and hex commands. Numbers are
// kept as text so they can be written in any base (0x10000000).
type Config struct {
	Family   string `yaml:"family"`
	Address  string `yaml:"address"`
	Flags    string `yaml:"flags"`
	Size     int    `yaml:"size"`
	Fixed    bool   `yaml:"fixed"`
	Strict   bool   `yaml:"strict"`
	Pad      string `yaml:"pad"`
	LogLevel string `yaml:"log_level"`
}

// Default returns the configuration used when there is no preset.
func Default() *Config {
	return &Config{
		Address:  "0",
		Flags:    "0",
		Size:     conv.DefaultChunkSize,
		Pad:      "0xff",
		LogLevel: "info",
	}
}

// Load reads the preset file. Fields missing in the file keep their default
// values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the values that can be checked without knowing the
// command.
func Validate(cfg *Config) error {
	if cfg.Family != "" {
		if _, err := uf2.ParseFamily(cfg.Family); err != nil {
			return err
		}
	}
	if _, err := parseU32("address", cfg.Address); err != nil {
		return err
	}
	if _, err := parseU32("flags", cfg.Flags); err != nil {
		return err
	}
	if cfg.Size < 1 || cfg.Size > uf2.PayloadSize {
		return fmt.Errorf("size: %d out of range 1..%d", cfg.Size, uf2.PayloadSize)
	}
	if _, err := cfg.PadByte(); err != nil {
		return err
	}
	return nil
}

// AddressValue returns the parsed Address field.
func (cfg *Config) AddressValue() uint32 {
	u, _ := parseU32("address", cfg.Address)
	return u
}

// FlagsValue returns the parsed Flags field.
func (cfg *Config) FlagsValue() uint32 {
	u, _ := parseU32("flags", cfg.Flags)
	return u
}

// PadByte returns the parsed Pad field.
func (cfg *Config) PadByte() (byte, error) {
	if cfg.Pad == "" {
		return 0xff, nil
	}
	u, err := strconv.ParseUint(cfg.Pad, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("pad: bad byte %q", cfg.Pad)
	}
	return byte(u), nil
}

// Params builds conversion parameters for the given direction.
func (cfg *Config) Params(d conv.Direction) (conv.Params, error) {
	if err := Validate(cfg); err != nil {
		return conv.Params{}, err
	}
	p := conv.DefaultParams(d)
	p.Flags = cfg.FlagsValue()
	p.BaseAddress = cfg.AddressValue()
	p.ChunkSize = cfg.Size
	p.ShortTail = cfg.Fixed
	p.Strict = cfg.Strict
	if cfg.Family != "" {
		id, _ := uf2.ParseFamily(cfg.Family)
		p = p.WithFamily(id)
	}
	return p, nil
}

func parseU32(what, s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	u, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%s: bad 32-bit number %q", what, s)
	}
	return uint32(u), nil
}
