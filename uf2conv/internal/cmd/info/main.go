// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package info

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/embeddedgo/uf2tools/uf2conv/internal/config"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/conv"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/uf2"
	"github.com/embeddedgo/uf2tools/uf2conv/internal/util"
)

const Descr = "print the blocks and the address layout of a UF2 file"

func Main(cmd string, args []string, cfg *config.Config) {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage:\n  %s [OPTIONS] UF2\nOptions:\n", cmd)
		fs.PrintDefaults()
	}
	summary := fs.Bool("s", false, "print only the summary")
	logLevel := fs.String("log", cfg.LogLevel, "log `level`")
	fs.Parse(args)
	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}
	util.FatalErr("", util.SetLogLevel(*logLevel))
	lay, err := list(os.Stdout, fs.Arg(0), !*summary)
	util.FatalErr("info", err)
	if lay.Invalid != 0 {
		os.Exit(1)
	}
}

func list(w io.Writer, name string, blocks bool) (lay conv.Layout, err error) {
	f, err := os.Open(name)
	if err != nil {
		return lay, err
	}
	defer f.Close()
	fi, err := f.Stat()
	if err != nil {
		return lay, err
	}
	tw := tabwriter.NewWriter(w, 0, 8, 2, ' ', 0)
	if blocks {
		fmt.Fprintln(tw, "#\tBLOCK\tADDRESS\tSIZE\tFLAGS\tFAMILY\t")
	}
	lay, err = conv.Inspect(f, fi.Size(), func(i int, b *uf2.Block, err error) bool {
		if !blocks {
			return true
		}
		if err != nil {
			fmt.Fprintf(tw, "%d\t%v\t\t\t\t\t\n", i, err)
			return true
		}
		family := "-"
		if b.Flags&uf2.FamilyIDPresent != 0 {
			family = fmt.Sprintf("%#08x %s", b.FamilyID, uf2.FamilyName(b.FamilyID))
		}
		fmt.Fprintf(
			tw, "%d\t%d/%d\t%#08x\t%d\t%#08x\t%s\t\n",
			i, b.BlockNo, b.BlockTotals, b.TargetAddress, b.PayloadSize,
			b.Flags, family,
		)
		return true
	})
	if err != nil {
		return lay, err
	}
	if err = tw.Flush(); err != nil {
		return lay, err
	}
	fmt.Fprintf(w, "blocks: %d (invalid: %d)\n", lay.Blocks, lay.Invalid)
	if lay.End != 0 {
		fmt.Fprintf(w, "range:  %#08x-%#08x\n", lay.Start, lay.End)
	}
	fmt.Fprintf(w, "holes:  %d (%d bytes)\n", lay.Holes, lay.HoleBytes)
	_, err = fmt.Fprintf(w, "overlaps: %d\n", lay.Overlaps)
	return lay, err
}
