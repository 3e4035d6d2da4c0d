// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uf2

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/embeddedgo/uf2tools/uf2conv/internal/config"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/conv"
	block "github.com/embeddedgo/uf2tools/uf2conv/internal/uf2"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/util"
)

const Descr = "convert a BIN, ELF or HEX file to the UF2 format"

func Main(cmd string, args []string, cfg *config.Config) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(
			os.Stderr,
			"Usage:\n  %s [OPTIONS] [INPUT [UF2]]\nOptions:\n",
			cmd,
		)
		fs.PrintDefaults()
	}
	flags := fs.String("flags", cfg.Flags, "UF2 block `flags` (32-bit number)")
	address := fs.String(
		"address", cfg.Address,
		"target `address` of the image (ELF and HEX files carry their own)",
	)
	family := fs.String(
		"family", cfg.Family,
		"UF2 family `ID` (32-bit number) or a known family name:\n"+
			strings.Join(block.FamilyNames(), "\n"),
	)
	size := fs.Int("size", cfg.Size, "block payload `size` (1..476)")
	fixed := fs.Bool(
		"fixed", cfg.Fixed,
		"shrink the payload size of the last block to the remaining data",
	)
	inc := fs.String(
		"inc", "",
		"binary files to be included BIN1:ADDR1[,BIN2:ADDR2[,...]]",
	)
	pad := fs.String("pad", cfg.Pad, "pad `byte` used to fill gaps between sections")
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
	c.Flags, c.Address, c.Family = *flags, *address, *family
	c.Size, c.Fixed, c.Pad = *size, *fixed, *pad
	p, err := c.Params(conv.ToUF2)
	util.FatalErr("uf2", err)
	padByte, _ := c.PadByte()
	addrSet := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "address" {
			addrSet = true
		}
	})

	in, out := util.InOutFiles(fs.Arg(0), ".bin", fs.Arg(1), ".uf2")
	opts := []conv.Option{
		conv.WithProgress(util.ProgressFunc(os.Stderr, "uf2", "blocks", *quiet)),
	}
	rep, err := convert(in, out, p, source{*inc, padByte, addrSet}, opts)
	util.FatalErr("uf2", err)
	log.Debug().EmbedObject(rep).Msgf("%s -> %s", in, out)
	if !*quiet {
		util.FatalErr("", rep.Print(os.Stdout))
	}
}

type source struct {
	inc     string
	pad     byte
	addrSet bool
}

// open returns the flat image to be converted. A plain BIN file is streamed,
// anything else is flattened in memory first.
func (src source) open(name string, p *conv.Params) (r io.Reader, size int64, closer func() error, err error) {
	kind := util.ImageKind(name)
	if kind == "bin" && src.inc == "" {
		f, err := os.Open(name)
		if err != nil {
			return nil, 0, nil, err
		}
		fi, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, 0, nil, err
		}
		return bufio.NewReader(f), fi.Size(), f.Close, nil
	}
	var ss util.Sections
	if kind == "bin" {
		data, err := os.ReadFile(name)
		if err != nil {
			return nil, 0, nil, err
		}
		ss = util.Sections{{Paddr: uint64(p.BaseAddress), Data: data}}
	} else {
		if ss, err = util.ReadSections(name); err != nil {
			return nil, 0, nil, err
		}
	}
	if src.inc != "" {
		isec, err := util.ReadBins(src.inc)
		if err != nil {
			return nil, 0, nil, err
		}
		ss = append(ss, isec...)
	}
	if len(ss) == 0 {
		return nil, 0, nil, errors.New(name + ": no loadable data")
	}
	buf := bytes.NewBuffer(make([]byte, 0, ss.Size()))
	if _, err = ss.Flatten(buf, src.pad); err != nil {
		return nil, 0, nil, err
	}
	// ss is sorted by Flatten
	if kind == "bin" || !src.addrSet {
		if ss[0].Paddr > 0xffff_ffff {
			return nil, 0, nil, fmt.Errorf("the target address %#x doesn't fit in 32 bits", ss[0].Paddr)
		}
		p.BaseAddress = uint32(ss[0].Paddr)
	}
	return buf, int64(buf.Len()), func() error { return nil }, nil
}

func convert(in, out string, p conv.Params, src source, opts []conv.Option) (rep *conv.Report, err error) {
	r, size, closeIn, err := src.open(in, &p)
	if err != nil {
		return nil, err
	}
	defer closeIn()
	f, err := os.Create(out)
	if err != nil {
		return nil, err
	}
	defer func() {
		if e := f.Close(); err == nil {
			err = e
		}
	}()
	w := bufio.NewWriter(f)
	if rep, err = conv.Encode(w, r, size, p, opts...); err != nil {
		w.Flush() // keep the blocks written so far
		return nil, err
	}
	return rep, w.Flush()
}
