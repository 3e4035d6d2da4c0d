// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conv

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/embeddedgo/uf2tools/uf2conv/internal/uf2"
)

func TestExtents(t *testing.T) {
	var e extents
	e.add(512, 768)
	e.add(0, 256)
	e.add(1024, 1100)
	e.add(700, 800) // overlaps 512..768
	e.add(0, 100)   // same start, shorter

	s := e.stats()
	assert.Equal(t, int64(1100), s.End)
	assert.Equal(t, 2, s.Holes) // 256..512, 800..1024
	assert.Equal(t, int64(256+224), s.HoleBytes)
	assert.Equal(t, 2, s.Overlaps)
}

func TestExtentsEmpty(t *testing.T) {
	var e extents
	assert.Equal(t, extentStats{}, e.stats())
}

func TestInspect(t *testing.T) {
	p := params(256, true)
	p.BaseAddress = 0x1000_0000
	blocks := splitBlocks(t, encode(t, pattern(1000), p))
	blocks[1].MagicEnd = 0 // invalid, leaves a hole
	stream := joinBlocks(t, blocks)

	var seen []int
	lay, err := Inspect(bytes.NewReader(stream), int64(len(stream)), func(i int, b *uf2.Block, err error) bool {
		seen = append(seen, i)
		if i == 1 {
			assert.ErrorIs(t, err, uf2.ErrBadMagic)
		} else {
			assert.NoError(t, err)
		}
		return true
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3}, seen)
	assert.Equal(t, 4, lay.Blocks)
	assert.Equal(t, 1, lay.Invalid)
	assert.Equal(t, uint32(0x1000_0000), lay.Start)
	assert.Equal(t, uint64(0x1000_0000+1000), lay.End)
	assert.Equal(t, 1, lay.Holes)
	assert.Equal(t, int64(256), lay.HoleBytes)
	assert.Zero(t, lay.Overlaps)

	_, err = Inspect(bytes.NewReader(stream[:100]), 100, nil)
	assert.ErrorIs(t, err, ErrStreamLength)
}

func TestInspectStop(t *testing.T) {
	stream := encode(t, pattern(1000), params(100, false))
	n := 0
	lay, err := Inspect(bytes.NewReader(stream), int64(len(stream)), func(int, *uf2.Block, error) bool {
		n++
		return n < 3
	})
	require.NoError(t, err)
	assert.Equal(t, 3, lay.Blocks)
	assert.Equal(t, uint64(300), lay.End)
}
