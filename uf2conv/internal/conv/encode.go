// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conv

import (
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/embeddedgo/uf2tools/uf2conv/internal/uf2"
)

// Writer splits the bytes written to it into UF2 blocks. Full blocks are
// written as soon as they fill up, the last partial one by Flush.
type Writer struct {
	w         io.Writer
	b         uf2.Block
	n         int // bytes buffered in b.Payload
	chunk     int
	shortTail bool
	blocks    int
	progress  func(done, total int)
}

// NewWriter returns a Writer that produces the blocks of an image of the
// given size. The size is used only to calculate the BlockTotals field.
func NewWriter(w io.Writer, p Params, size int64) *Writer {
	u := new(Writer)
	u.w = w
	u.chunk = p.ChunkSize
	u.shortTail = p.ShortTail
	u.b = uf2.New(p.Flags, p.BaseAddress, p.FamilyID)
	u.b.PayloadSize = uint32(p.ChunkSize)
	u.b.BlockTotals = BlockCount(size, p.ChunkSize)
	u.progress = func(int, int) {}
	return u
}

// BlockCount returns the number of blocks needed to carry size bytes in
// chunks of the given size.
func BlockCount(size int64, chunk int) uint32 {
	return uint32((size + int64(chunk) - 1) / int64(chunk))
}

func (u *Writer) Write(p []byte) (n int, err error) {
	for len(p) != 0 {
		m := copy(u.b.Payload[u.n:u.chunk], p)
		n += m
		p = p[m:]
		u.n += m
		if u.n == u.chunk {
			if err = u.emit(); err != nil {
				return
			}
		}
	}
	return
}

// Flush writes the buffered partial block, if any. With the short-tail
// fix-up its PayloadSize is the number of buffered bytes, otherwise the
// chunk size with the rest of the payload zeroed.
func (u *Writer) Flush() error {
	if u.n == 0 {
		return nil
	}
	return u.emit()
}

// Blocks returns the number of blocks written so far.
func (u *Writer) Blocks() int { return u.blocks }

func (u *Writer) emit() error {
	b := &u.b
	if u.n < u.chunk && u.shortTail {
		b.PayloadSize = uint32(u.n)
	} else {
		b.PayloadSize = uint32(u.chunk)
	}
	b.BlockNo = uint32(u.blocks)
	if err := uf2.Write(u.w, b); err != nil {
		return err
	}
	log.Debug().
		Uint32("block", b.BlockNo).
		Uint32("addr", b.TargetAddress).
		Uint32("size", b.PayloadSize).
		Msg("uf2: block written")
	clear(b.Payload[:])
	b.TargetAddress += b.PayloadSize
	u.blocks++
	u.n = 0
	u.progress(u.blocks, int(b.BlockTotals))
	return nil
}

// Encode reads size bytes of a flat image from r and writes them to w as
// a sequence of UF2 blocks.
func Encode(w io.Writer, r io.Reader, size int64, p Params, opts ...Option) (*Report, error) {
	if err := p.validateFor(ToUF2); err != nil {
		return nil, err
	}
	if size < 0 || uint64(p.BaseAddress)+uint64(size) > 1<<32 {
		return nil, fmt.Errorf(
			"%w: %#x + %d", ErrAddressOverflow, p.BaseAddress, size,
		)
	}
	o := makeOptions(opts)
	u := NewWriter(w, p, size)
	u.progress = o.progress
	n, err := io.Copy(u, io.LimitReader(r, size))
	if err != nil {
		return nil, err
	}
	if err = u.Flush(); err != nil {
		return nil, err
	}
	if n != size {
		log.Warn().Msgf(
			"uf2: input ended after %d of %d bytes, wrote %d of %d blocks",
			n, size, u.Blocks(), u.b.BlockTotals,
		)
	}
	return &Report{
		Direction:   ToUF2,
		InputSize:   n,
		OutputSize:  int64(u.Blocks()) * uf2.BlockSize,
		FamilyID:    p.FamilyID,
		BaseAddress: p.BaseAddress,
		Flags:       p.Flags,
		ChunkSize:   uint32(p.ChunkSize),
		BlockCount:  u.b.BlockTotals,
		Blocks:      u.Blocks(),
	}, nil
}
