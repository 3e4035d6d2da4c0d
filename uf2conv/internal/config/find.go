// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	FileName = "uf2conv.yaml"
	EnvName  = "UF2CONV_CONFIG"
)

// Find returns the path to the preset file or an empty string if there is
// none. UF2CONV_CONFIG takes precedence. Otherwise the directories from the
// current one up are searched, stopping at the first one that contains
// go.mod.
func Find() (string, error) {
	if p := os.Getenv(EnvName); p != "" {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		p := filepath.Join(wd, FileName)
		fi, err := os.Stat(p)
		if err == nil {
			if !fi.Mode().IsRegular() {
				return "", fmt.Errorf("%s is not a regular file", p)
			}
			return p, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		_, err = os.Stat(filepath.Join(wd, "go.mod"))
		if err == nil {
			return "", nil // found go.mod but no preset, stop here
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return "", err
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			return "", nil
		}
		wd = parent
	}
}

// FindAndLoad loads the preset found by Find or returns the defaults.
func FindAndLoad() (cfg *Config, path string, err error) {
	path, err = Find()
	if err != nil {
		return nil, "", err
	}
	if path == "" {
		return Default(), "", nil
	}
	if cfg, err = Load(path); err != nil {
		return nil, path, err
	}
	if err = Validate(cfg); err != nil {
		return nil, path, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, path, nil
}
