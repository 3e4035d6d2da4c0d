// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"bytes"
	"fmt"
	"io"

	"github.com/marcinbor85/gohex"
)

// HexImage is an io.WriterAt that collects data to be saved in the Intel
// HEX format. Unwritten gaps stay gaps in the HEX file.
type HexImage struct {
	mem *gohex.Memory
}

func NewHexImage() *HexImage {
	return &HexImage{gohex.NewMemory()}
}

func (h *HexImage) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > 1<<32 {
		return 0, fmt.Errorf("hex: offset %#x out of the 32-bit address space", off)
	}
	h.mem.SetBinary(uint32(off), bytes.Clone(p))
	return len(p), nil
}

// Dump writes the image relocated to base in the Intel HEX format.
func (h *HexImage) Dump(w io.Writer, base uint32, lineLen int) error {
	out := gohex.NewMemory()
	for _, seg := range h.mem.GetDataSegments() {
		if uint64(base)+uint64(seg.Address)+uint64(len(seg.Data)) > 1<<32 {
			return fmt.Errorf("hex: segment %#x+%#x doesn't fit in 32 bits", base, seg.Address)
		}
		if err := out.AddBinary(base+seg.Address, seg.Data); err != nil {
			return err
		}
	}
	return out.DumpIntelHex(w, byte(lineLen))
}
