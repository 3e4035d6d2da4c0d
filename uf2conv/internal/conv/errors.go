// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conv

import (
	"errors"
	"fmt"
)

var (
	ErrChunkSize         = errors.New("illegal payload size")
	ErrStreamLength      = errors.New("UF2 size must be a multiple of 512 bytes")
	ErrAddressRegression = errors.New("target address below the base address")
	ErrAddressOverflow   = errors.New("image doesn't fit in the 32-bit address space")
	ErrInconsistent      = errors.New("block disagrees with block 0")
	ErrNoBlockZero       = errors.New("no valid block 0 to check the other blocks against")
	ErrDirection         = errors.New("wrong conversion direction")
)

// BlockError describes a problem with the block at the given position in
// the UF2 stream.
type BlockError struct {
	Index   int    // position in the stream (0-based)
	BlockNo uint32 // BlockNo field as read
	Addr    uint32 // TargetAddress field as read
	Err     error
}

func (e *BlockError) Error() string {
	return fmt.Sprintf(
		"block %d (no %d, addr %#08x): %v", e.Index, e.BlockNo, e.Addr, e.Err,
	)
}

func (e *BlockError) Unwrap() error { return e.Err }
