// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uf2

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var (
	ErrBadMagic    = errors.New("uf2: not a UF2 block")
	ErrPayloadSize = errors.New("uf2: payload size out of range")
	ErrShortBlock  = errors.New("uf2: short block")
)

var le = binary.LittleEndian

// AppendBinary appends the 512-byte little-endian encoding of b to buf.
func (b *Block) AppendBinary(buf []byte) ([]byte, error) {
	return binary.Append(buf, le, b)
}

// MarshalBinary returns the 512-byte encoding of b.
func (b *Block) MarshalBinary() ([]byte, error) {
	return b.AppendBinary(make([]byte, 0, BlockSize))
}

// UnmarshalBinary decodes the first 512 bytes of data into b. It succeeds for
// any 512 bytes: use IsWellFormed and IsInRange to check the result.
func (b *Block) UnmarshalBinary(data []byte) error {
	if len(data) < BlockSize {
		return fmt.Errorf("%w: %d bytes", ErrShortBlock, len(data))
	}
	_, err := binary.Decode(data[:BlockSize], le, b)
	return err
}

// DecodeHeader decodes the fixed fields that precede the payload. The
// payload and MagicEnd are left untouched: use DecodeMagicEnd to complete
// the IsWellFormed check.
func (b *Block) DecodeHeader(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("%w: %d bytes", ErrShortBlock, len(data))
	}
	b.MagicStart0 = le.Uint32(data[0:])
	b.MagicStart1 = le.Uint32(data[4:])
	b.Flags = le.Uint32(data[8:])
	b.TargetAddress = le.Uint32(data[12:])
	b.PayloadSize = le.Uint32(data[16:])
	b.BlockNo = le.Uint32(data[20:])
	b.BlockTotals = le.Uint32(data[24:])
	b.FamilyID = le.Uint32(data[28:])
	return nil
}

// DecodeMagicEnd decodes MagicEnd from the last 4 bytes of data.
func (b *Block) DecodeMagicEnd(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("%w: %d bytes", ErrShortBlock, len(data))
	}
	b.MagicEnd = le.Uint32(data[len(data)-4:])
	return nil
}

// Write writes the encoding of b to w.
func Write(w io.Writer, b *Block) error {
	var buf [BlockSize]byte
	data, err := b.AppendBinary(buf[:0])
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// Check returns nil if b is well formed and in range.
func Check(b *Block) error {
	if !b.IsWellFormed() {
		return ErrBadMagic
	}
	if !b.IsInRange() {
		return fmt.Errorf("%w: %d", ErrPayloadSize, b.PayloadSize)
	}
	return nil
}
