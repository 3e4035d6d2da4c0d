// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conv

import (
	"fmt"
	"io"

	"github.com/embeddedgo/uf2tools/uf2conv/internal/uf2"
)

// Layout describes the address space covered by a UF2 stream.
type Layout struct {
	Blocks    int
	Invalid   int    // blocks rejected by uf2.Check
	Start     uint32 // lowest TargetAddress
	End       uint64 // highest TargetAddress+PayloadSize
	Holes     int
	HoleBytes int64
	Overlaps  int
}

// Inspect walks all blocks of a UF2 stream and calls fn for each of them
// with the result of uf2.Check. Unlike Decode it doesn't stop at invalid
// blocks. Returning false from fn stops the walk.
func Inspect(r io.ReaderAt, size int64, fn func(i int, b *uf2.Block, err error) bool) (Layout, error) {
	var lay Layout
	if size%uf2.BlockSize != 0 {
		return lay, fmt.Errorf("%w: %d bytes", ErrStreamLength, size)
	}
	var (
		b     uf2.Block
		buf   [uf2.BlockSize]byte
		ext   extents
		first = true
	)
	count := int(size / uf2.BlockSize)
	for i := 0; i < count; i++ {
		if err := readBlock(r, i, buf[:], &b); err != nil {
			return lay, err
		}
		lay.Blocks++
		err := uf2.Check(&b)
		if err != nil {
			lay.Invalid++
		} else {
			if first || b.TargetAddress < lay.Start {
				lay.Start = b.TargetAddress
				first = false
			}
			start := int64(b.TargetAddress)
			ext.add(start, start+int64(b.PayloadSize))
		}
		if fn != nil && !fn(i, &b, err) {
			break
		}
	}
	st := ext.stats()
	if st.End != 0 {
		lay.End = uint64(st.End)
		// extents count from address 0, the hole below Start isn't one
		if lay.Start != 0 {
			st.Holes--
			st.HoleBytes -= int64(lay.Start)
		}
	}
	lay.Holes = st.Holes
	lay.HoleBytes = st.HoleBytes
	lay.Overlaps = st.Overlaps
	return lay, nil
}
