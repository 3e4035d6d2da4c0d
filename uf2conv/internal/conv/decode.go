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

// Decode reads a UF2 stream of the given size from r and writes the payload
// of every block to w at the offset TargetAddress - base, where base is the
// TargetAddress of block 0. Blocks may come in any order. The first invalid
// block stops the conversion; the payloads already written stay in w and
// the returned Report, which accompanies the *BlockError, describes them.
//
// The size of the produced image is the highest offset+PayloadSize written.
// Gaps between payloads are left to w (files read them as zeros).
func Decode(w io.WriterAt, r io.ReaderAt, size int64, p Params, opts ...Option) (*Report, error) {
	if err := p.validateFor(ToBin); err != nil {
		return nil, err
	}
	if size%uf2.BlockSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrStreamLength, size)
	}
	o := makeOptions(opts)
	count := int(size / uf2.BlockSize)
	ref, ok, err := findFirst(r, count)
	if err != nil {
		return nil, err
	}
	if !ok && count != 0 {
		if p.Strict {
			return nil, ErrNoBlockZero
		}
		log.Warn().Msgf(
			"uf2: there is no block 0, assuming base address %#x",
			p.BaseAddress,
		)
	}
	if !ok {
		ref = uf2.New(p.Flags, p.BaseAddress, p.FamilyID)
		ref.PayloadSize = uint32(p.ChunkSize)
	}
	rep := &Report{
		Direction:   ToBin,
		InputSize:   size,
		FamilyID:    ref.FamilyID,
		BaseAddress: ref.TargetAddress,
		Flags:       ref.Flags,
		ChunkSize:   ref.PayloadSize,
		BlockCount:  ref.BlockTotals,
	}
	var (
		b   uf2.Block
		buf [uf2.BlockSize]byte
		ext extents
	)
	done := func() {
		st := ext.stats()
		rep.OutputSize = st.End
		rep.Holes = st.Holes
		rep.Overlaps = st.Overlaps
	}
	for i := 0; i < count; i++ {
		if err = readBlock(r, i, buf[:], &b); err != nil {
			return nil, err
		}
		fail := func(err error) (*Report, error) {
			done()
			return rep, &BlockError{Index: i, BlockNo: b.BlockNo, Addr: b.TargetAddress, Err: err}
		}
		if err = uf2.Check(&b); err != nil {
			return fail(err)
		}
		if p.Strict {
			if err = checkConsistent(&ref, &b); err != nil {
				return fail(err)
			}
		}
		if b.TargetAddress < ref.TargetAddress {
			return fail(fmt.Errorf(
				"%w %#x", ErrAddressRegression, ref.TargetAddress,
			))
		}
		off := int64(b.TargetAddress - ref.TargetAddress)
		data := b.Data()
		if _, err = w.WriteAt(data, off); err != nil {
			return nil, err
		}
		ext.add(off, off+int64(len(data)))
		rep.Blocks++
		log.Debug().
			Int("index", i).
			Uint32("block", b.BlockNo).
			Int64("offset", off).
			Int("size", len(data)).
			Msg("uf2: payload placed")
		o.progress(i+1, count)
	}
	done()
	if rep.Overlaps != 0 {
		log.Warn().Msgf("uf2: %d block payloads overlap", rep.Overlaps)
	}
	if ok && int(ref.BlockTotals) != count {
		log.Warn().Msgf(
			"uf2: block 0 declares %d blocks but the stream carries %d",
			ref.BlockTotals, count,
		)
	}
	return rep, nil
}

// findFirst returns the header of the first valid block with BlockNo == 0.
// Only the header and MagicEnd of each block are read. Invalid blocks are
// skipped here and reported by the placement loop.
func findFirst(r io.ReaderAt, count int) (ref uf2.Block, ok bool, err error) {
	var (
		hdr [uf2.HeaderSize]byte
		end [4]byte
	)
	for i := 0; i < count; i++ {
		off := int64(i) * uf2.BlockSize
		if err = readAt(r, i, hdr[:], off); err != nil {
			return
		}
		if err = ref.DecodeHeader(hdr[:]); err != nil || ref.BlockNo != 0 {
			continue
		}
		if err = readAt(r, i, end[:], off+uf2.BlockSize-int64(len(end))); err != nil {
			return
		}
		if err = ref.DecodeMagicEnd(end[:]); err == nil && uf2.Check(&ref) == nil {
			return ref, true, nil
		}
	}
	return uf2.Block{}, false, nil
}

func readBlock(r io.ReaderAt, i int, buf []byte, b *uf2.Block) error {
	if err := readAt(r, i, buf, int64(i)*uf2.BlockSize); err != nil {
		return err
	}
	return b.UnmarshalBinary(buf)
}

func readAt(r io.ReaderAt, i int, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		err = nil // ReaderAt may return io.EOF together with the last bytes
	} else if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	if err != nil {
		return fmt.Errorf("read block %d: %w", i, err)
	}
	return nil
}

func checkConsistent(ref, b *uf2.Block) error {
	switch {
	case ref.Flags&uf2.FamilyIDPresent != 0 && !b.HasFamily(ref.FamilyID):
		return fmt.Errorf(
			"%w: family %#08x, want %#08x", ErrInconsistent, b.FamilyID, ref.FamilyID,
		)
	case b.FamilyID != ref.FamilyID:
		return fmt.Errorf(
			"%w: family %#08x, want %#08x", ErrInconsistent, b.FamilyID, ref.FamilyID,
		)
	case b.Flags != ref.Flags:
		return fmt.Errorf(
			"%w: flags %#08x, want %#08x", ErrInconsistent, b.Flags, ref.Flags,
		)
	case b.BlockTotals != ref.BlockTotals:
		return fmt.Errorf(
			"%w: %d blocks in total, want %d", ErrInconsistent, b.BlockTotals, ref.BlockTotals,
		)
	case b.BlockNo >= b.BlockTotals:
		return fmt.Errorf(
			"%w: block number %d >= %d", ErrInconsistent, b.BlockNo, b.BlockTotals,
		)
	}
	return nil
}
