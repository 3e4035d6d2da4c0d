// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conv

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/embeddedgo/uf2tools/uf2conv/internal/uf2"
)

// Report summarizes a finished conversion.
type Report struct {
	Direction   Direction
	InputSize   int64
	OutputSize  int64
	FamilyID    uint32
	BaseAddress uint32
	Flags       uint32
	ChunkSize   uint32 // PayloadSize of the (first) block
	BlockCount  uint32 // BlockTotals field
	Blocks      int    // blocks written or read
	Holes       int    // ToBin: unwritten gaps in the image
	Overlaps    int    // ToBin: payloads written over other payloads
}

// BinSize returns the size of the flat image side of the conversion.
func (r *Report) BinSize() int64 {
	if r.Direction == ToBin {
		return r.OutputSize
	}
	return r.InputSize
}

// UF2Size returns the size of the UF2 side of the conversion.
func (r *Report) UF2Size() int64 {
	if r.Direction == ToBin {
		return r.InputSize
	}
	return r.OutputSize
}

// Print writes the report in a human readable form.
func (r *Report) Print(w io.Writer) error {
	var sb strings.Builder
	line := func(name, f string, args ...any) {
		fmt.Fprintf(&sb, "%17s: "+f+"\n", append([]any{name}, args...)...)
	}
	size := func(n int64) string {
		return fmt.Sprintf("%d (%s)", n, humanize.IBytes(uint64(n)))
	}
	fmt.Fprintf(&sb, "  Convert %v:\n", r.Direction)
	line("Binary Size", "%s", size(r.BinSize()))
	family := fmt.Sprintf("0x%08X", r.FamilyID)
	if name := uf2.FamilyName(r.FamilyID); name != "" && r.Flags&uf2.FamilyIDPresent != 0 {
		family += " (" + name + ")"
	}
	line("Family Identify", "%s", family)
	line("Target Address", "0x%08X", r.BaseAddress)
	line("UF2 Size", "%s", size(r.UF2Size()))
	line("UF2 Flags", "0x%08X", r.Flags)
	line("UF2 Block Size", "%d", r.ChunkSize)
	line("UF2 Block Counts", "%d", r.BlockCount)
	if r.Direction == ToBin {
		line("Blocks Read", "%d", r.Blocks)
		if r.Holes != 0 || r.Overlaps != 0 {
			line("Holes / Overlaps", "%d / %d", r.Holes, r.Overlaps)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (r *Report) MarshalZerologObject(e *zerolog.Event) {
	e.Stringer("direction", r.Direction).
		Int64("bin_size", r.BinSize()).
		Int64("uf2_size", r.UF2Size()).
		Str("family", fmt.Sprintf("%#08x", r.FamilyID)).
		Str("address", fmt.Sprintf("%#08x", r.BaseAddress)).
		Str("flags", fmt.Sprintf("%#08x", r.Flags)).
		Uint32("block_size", r.ChunkSize).
		Uint32("block_totals", r.BlockCount).
		Int("blocks", r.Blocks)
}
