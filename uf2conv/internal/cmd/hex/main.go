// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hex

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/embeddedgo/uf2tools/uf2conv/internal/config"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/conv"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/util"
)

const Descr = "convert a UF2 (or ELF) file to the Intel HEX format"

func Main(cmd string, args []string, cfg *config.Config) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] [UF2 [%s]]\nOptions:\n",
			cmd, strings.ToUpper(cmd),
		)
		fs.PrintDefaults()
	}
	strict := fs.Bool(
		"strict", cfg.Strict,
		"fail if a block disagrees with block 0 (family, flags, totals)",
	)
	lineLen := fs.Int("line", 16, "number of data bytes per HEX record")
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
	if *lineLen < 1 || *lineLen > 255 {
		util.Fatal("hex: bad line length: %d", *lineLen)
	}

	c := *cfg
	c.Strict = *strict
	p, err := c.Params(conv.ToBin)
	util.FatalErr("hex", err)

	in, out := util.InOutFiles(fs.Arg(0), ".uf2", fs.Arg(1), ".hex")
	if util.ImageKind(in) == "elf" {
		img := util.NewHexImage()
		sections, err := util.ReadELF(in)
		util.FatalErr("readelf", err)
		for _, s := range sections {
			_, err = img.WriteAt(s.Data, int64(s.Paddr))
			util.FatalErr("readelf", err)
		}
		util.FatalErr("hex", dump(out, img, 0, *lineLen))
		return
	}
	opts := []conv.Option{
		conv.WithProgress(util.ProgressFunc(os.Stderr, "hex", "blocks", *quiet)),
	}
	rep, err := convert(in, out, p, *lineLen, opts)
	util.FatalErr("hex", err)
	log.Debug().EmbedObject(rep).Msgf("%s -> %s", in, out)
	if !*quiet {
		util.FatalErr("", rep.Print(os.Stdout))
	}
}

// convert decodes a UF2 file into an Intel HEX file. If the decoding stops
// at a bad block, the payloads placed before it are still written out.
func convert(in, out string, p conv.Params, lineLen int, opts []conv.Option) (*conv.Report, error) {
	img := util.NewHexImage()
	rep, err := decode(in, img, p, opts)
	if rep == nil {
		return nil, err
	}
	if err != nil {
		util.Warn("hex: %s holds the %d blocks decoded before the error", out, rep.Blocks)
	}
	if derr := dump(out, img, rep.BaseAddress, lineLen); err == nil {
		err = derr
	}
	return rep, err
}

func decode(in string, img *util.HexImage, p conv.Params, opts []conv.Option) (*conv.Report, error) {
	r, err := os.Open(in)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	fi, err := r.Stat()
	if err != nil {
		return nil, err
	}
	return conv.Decode(img, r, fi.Size(), p, opts...)
}

func dump(out string, img *util.HexImage, base uint32, lineLen int) (err error) {
	f, err := os.Create(out)
	if err != nil {
		return err
	}
	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
	}()
	w := bufio.NewWriter(f)
	if err = img.Dump(w, base, lineLen); err != nil {
		return err
	}
	return w.Flush()
}
