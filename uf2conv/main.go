// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Uf2conv converts firmware images between the flat binary and the UF2
// formats.
package main

import (
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/rs/zerolog/log"

	"github.com/embeddedgo/uf2tools/uf2conv/internal/cmd/bin"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/cmd/hex"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/cmd/info"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/cmd/uf2"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/config"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/util"
)

type tool struct {
	descr string
	main  func(cmd string, args []string, cfg *config.Config)
}

var tools = map[string]tool{
	"bin":  {bin.Descr, bin.Main},
	"hex":  {hex.Descr, hex.Main},
	"info": {info.Descr, info.Main},
	"uf2":  {uf2.Descr, uf2.Main},
}

func printToolList() {
	names := slices.Sorted(maps.Keys(tools))
	maxLen := 0
	for _, k := range names {
		if maxLen < len(k) {
			maxLen = len(k)
		}
	}
	uw := os.Stderr
	uw.WriteString("Usage:\n  uf2conv COMMAND [ARGUMENTS]\n\n")
	uw.WriteString("Available commands:\n")
	for _, name := range names {
		fmt.Fprintf(uw, "  %*s  %s\n", maxLen, name, tools[name].descr)
	}
	fmt.Fprintf(
		uw, "\nDefaults are read from %s (or $%s) if present.\n",
		config.FileName, config.EnvName,
	)
}

func main() {
	util.SetupLog(os.Stderr)
	if len(os.Args) < 2 || os.Args[1] == "-h" {
		printToolList()
		return
	}
	tool, ok := tools[os.Args[1]]
	if !ok {
		printToolList()
		os.Exit(1)
	}
	cfg, path, err := config.FindAndLoad()
	util.FatalErr("config", err)
	util.FatalErr("config", util.SetLogLevel(cfg.LogLevel))
	if path != "" {
		log.Debug().Msgf("using %s", path)
	}
	tool.main(os.Args[1], os.Args[2:], cfg)
}
