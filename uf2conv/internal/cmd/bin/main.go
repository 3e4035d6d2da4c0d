// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bin

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/embeddedgo/uf2tools/uf2conv/internal/config"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/conv"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/util"
)

const Descr = "convert a UF2 file to a binary image"

func Main(cmd string, args []string, cfg *config.Config) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] [UF2 [BIN]]\nOptions:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	address := fs.String(
		"address", cfg.Address,
		"base `address` used if the file has no block 0",
	)
	strict := fs.Bool(
		"strict", cfg.Strict,
		"fail if a block disagrees with block 0 (family, flags, totals)",
	)
	logLevel := fs.String("log", cfg.LogLevel, "log `level`")
	quiet := fs.Bool(
		"quiet", false,
		"do not show the progress bar and the conversion report",
	)
	fs.Parse(args)
	if fs.NArg() > 2 {
		fs.Usage()
		os.Exit(1)
	}
	util.FatalErr("", util.SetLogLevel(*logLevel))

	c := *cfg
	c.Address, c.Strict = *address, *strict
	p, err := c.Params(conv.ToBin)
	util.FatalErr("bin", err)

	in, out := util.InOutFiles(fs.Arg(0), ".uf2", fs.Arg(1), ".bin")
	opts := []conv.Option{
		conv.WithProgress(util.ProgressFunc(os.Stderr, "bin", "blocks", *quiet)),
	}
	rep, err := convert(in, out, p, opts)
	util.FatalErr("bin", err)
	log.Debug().EmbedObject(rep).Msgf("%s -> %s", in, out)
	if !*quiet {
		util.FatalErr("", rep.Print(os.Stdout))
	}
}

func convert(in, out string, p conv.Params, opts []conv.Option) (rep *conv.Report, err error) {
	r, err := os.Open(in)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	fi, err := r.Stat()
	if err != nil {
		return nil, err
	}
	w, err := os.Create(out)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := w.Close(); err == nil {
			err = e
		}
	}()
	return conv.Decode(w, r, fi.Size(), p, opts...)
}
