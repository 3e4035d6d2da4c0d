// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package conv converts flat binary images to UF2 block sequences and back.
package conv

import (
	"fmt"

	"github.com/embeddedgo/uf2tools/uf2conv/internal/uf2"
)

type Direction uint8

const (
	ToUF2 Direction = iota // BIN -> UF2
	ToBin                  // UF2 -> BIN
)

func (d Direction) String() string {
	switch d {
	case ToUF2:
		return "BIN to UF2"
	case ToBin:
		return "UF2 to BIN"
	}
	return fmt.Sprintf("Direction(%d)", uint8(d))
}

const DefaultChunkSize = 256

// Params describes a conversion. Params are built once by the caller and
// passed by value.
type Params struct {
	Direction   Direction
	Flags       uint32
	BaseAddress uint32
	FamilyID    uint32
	ChunkSize   int  // payload bytes per block, 1..476
	ShortTail   bool // shrink PayloadSize of the last block to the data length
	Strict      bool // decode: require all blocks to agree with block 0
}

// DefaultParams returns the parameters used when nothing is specified.
func DefaultParams(d Direction) Params {
	return Params{Direction: d, ChunkSize: DefaultChunkSize}
}

// WithFamily returns p with the family ID set and the family-id-present flag
// raised.
func (p Params) WithFamily(id uint32) Params {
	p.FamilyID = id
	p.Flags |= uf2.FamilyIDPresent
	return p
}

// Validate checks the parameters that the converter relies on.
func (p Params) Validate() error {
	if p.ChunkSize < 1 || p.ChunkSize > uf2.PayloadSize {
		return fmt.Errorf("%w: %d (must be 1..%d)", ErrChunkSize, p.ChunkSize, uf2.PayloadSize)
	}
	if p.Direction != ToUF2 && p.Direction != ToBin {
		return fmt.Errorf("conv: bad direction %d", p.Direction)
	}
	return nil
}

func (p Params) validateFor(d Direction) error {
	if p.Direction != d {
		return fmt.Errorf("%w: %v params used to convert %v", ErrDirection, p.Direction, d)
	}
	return p.Validate()
}

type options struct {
	progress func(done, total int)
}

// Option configures Encode and Decode.
type Option func(*options)

// WithProgress sets a function called after every block with the number of
// blocks done and the expected total.
func WithProgress(f func(done, total int)) Option {
	return func(o *options) {
		o.progress = f
	}
}

func makeOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.progress == nil {
		o.progress = func(int, int) {}
	}
	return o
}
