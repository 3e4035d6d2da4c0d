// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package uf2 describes the 512-byte UF2 block and its binary encoding.
package uf2

const (
	MagicStart0 = 0x0a324655 // "UF2\n"
	MagicStart1 = 0x9e5d5157
	MagicEnd    = 0x0ab16f30
)

const (
	NotMainFlash         = 0x00000001
	FileContainer        = 0x00001000
	FamilyIDPresent      = 0x00002000
	MD5ChecksumPresent   = 0x00004000
	ExtensionTagsPresent = 0x00008000
)

const (
	BlockSize   = 512
	HeaderSize  = 32
	PayloadSize = 476 // capacity of the payload region
)

// Block is a single UF2 block. The field order is the wire order.
type Block struct {
	MagicStart0   uint32
	MagicStart1   uint32
	Flags         uint32
	TargetAddress uint32
	PayloadSize   uint32 // number of valid bytes in Payload
	BlockNo       uint32
	BlockTotals   uint32
	FamilyID      uint32
	Payload       [PayloadSize]byte
	MagicEnd      uint32
}

// New returns a block with the magic numbers set.
func New(flags, addr, family uint32) Block {
	return Block{
		MagicStart0:   MagicStart0,
		MagicStart1:   MagicStart1,
		Flags:         flags,
		TargetAddress: addr,
		FamilyID:      family,
		MagicEnd:      MagicEnd,
	}
}

// IsWellFormed reports whether all three magic numbers are correct. It
// doesn't check the payload size.
func (b *Block) IsWellFormed() bool {
	return b.MagicStart0 == MagicStart0 &&
		b.MagicStart1 == MagicStart1 &&
		b.MagicEnd == MagicEnd
}

// IsInRange reports whether 1 <= PayloadSize <= 476.
func (b *Block) IsInRange() bool {
	return b.PayloadSize >= 1 && b.PayloadSize <= PayloadSize
}

// HasFamily reports whether the family ID field is valid and equal to id.
func (b *Block) HasFamily(id uint32) bool {
	return b.Flags&FamilyIDPresent != 0 && b.FamilyID == id
}

// Data returns the valid part of the payload. PayloadSize is clamped to the
// payload capacity.
func (b *Block) Data() []byte {
	n := min(b.PayloadSize, PayloadSize)
	return b.Payload[:n]
}
