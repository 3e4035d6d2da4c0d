// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uf2

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockLayout(t *testing.T) {
	b := New(FamilyIDPresent, 0x10000000, 0xe48bff56)
	b.PayloadSize = 3
	b.BlockNo = 7
	b.BlockTotals = 9
	copy(b.Payload[:], "abc")

	data, err := b.MarshalBinary()
	require.NoError(t, err)
	require.Len(t, data, BlockSize)

	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(data[off:]) }
	assert.Equal(t, uint32(MagicStart0), u32(0))
	assert.Equal(t, uint32(MagicStart1), u32(4))
	assert.Equal(t, uint32(FamilyIDPresent), u32(8))
	assert.Equal(t, uint32(0x10000000), u32(12))
	assert.Equal(t, uint32(3), u32(16))
	assert.Equal(t, uint32(7), u32(20))
	assert.Equal(t, uint32(9), u32(24))
	assert.Equal(t, uint32(0xe48bff56), u32(28))
	assert.Equal(t, []byte("abc"), data[32:35])
	assert.Equal(t, make([]byte, PayloadSize-3), data[35:508])
	assert.Equal(t, uint32(MagicEnd), u32(508))

	// "UF2\n" at the start of every block
	assert.Equal(t, []byte("UF2\n"), data[:4])
}

func TestUnmarshalBinary(t *testing.T) {
	b := New(NotMainFlash, 0x2000, 0)
	b.PayloadSize = 476
	for i := range b.Payload {
		b.Payload[i] = byte(i)
	}
	data, err := b.MarshalBinary()
	require.NoError(t, err)

	var got Block
	require.NoError(t, got.UnmarshalBinary(data))
	assert.Equal(t, b, got)

	err = got.UnmarshalBinary(data[:511])
	assert.ErrorIs(t, err, ErrShortBlock)
}

func TestDecodeHeader(t *testing.T) {
	b := New(FamilyIDPresent, 0x100, 0x55114460)
	b.PayloadSize = 256
	b.BlockNo = 1
	b.BlockTotals = 2
	data, err := b.MarshalBinary()
	require.NoError(t, err)

	var h Block
	require.NoError(t, h.DecodeHeader(data[:HeaderSize]))
	assert.Equal(t, b.TargetAddress, h.TargetAddress)
	assert.Equal(t, b.BlockNo, h.BlockNo)
	assert.Equal(t, b.FamilyID, h.FamilyID)
	assert.Zero(t, h.MagicEnd)
	assert.False(t, h.IsWellFormed())

	require.NoError(t, h.DecodeMagicEnd(data[BlockSize-4:]))
	assert.True(t, h.IsWellFormed())
	assert.NoError(t, Check(&h))

	assert.ErrorIs(t, h.DecodeHeader(data[:HeaderSize-1]), ErrShortBlock)
	assert.ErrorIs(t, h.DecodeMagicEnd(data[:3]), ErrShortBlock)
}

func TestPredicates(t *testing.T) {
	valid := New(0, 0, 0)
	valid.PayloadSize = 256

	tests := []struct {
		name       string
		mod        func(b *Block)
		wellFormed bool
		inRange    bool
	}{
		{"valid", func(b *Block) {}, true, true},
		{"bad start0", func(b *Block) { b.MagicStart0 ^= 1 }, false, true},
		{"bad start1", func(b *Block) { b.MagicStart1 ^= 0x100 }, false, true},
		{"bad end", func(b *Block) { b.MagicEnd = 0 }, false, true},
		{"zero size", func(b *Block) { b.PayloadSize = 0 }, true, false},
		{"max size", func(b *Block) { b.PayloadSize = 476 }, true, true},
		{"too big", func(b *Block) { b.PayloadSize = 477 }, true, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := valid
			tt.mod(&b)
			assert.Equal(t, tt.wellFormed, b.IsWellFormed())
			assert.Equal(t, tt.inRange, b.IsInRange())
			err := Check(&b)
			switch {
			case !tt.wellFormed:
				assert.ErrorIs(t, err, ErrBadMagic)
			case !tt.inRange:
				assert.ErrorIs(t, err, ErrPayloadSize)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestHasFamily(t *testing.T) {
	b := New(0, 0, 0xada52840)
	assert.False(t, b.HasFamily(0xada52840), "flag not set")
	b.Flags |= FamilyIDPresent
	assert.True(t, b.HasFamily(0xada52840))
	assert.False(t, b.HasFamily(0xe48bff56))
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	for i := range 3 {
		b := New(0, uint32(i*256), 0)
		b.PayloadSize = 256
		b.BlockNo = uint32(i)
		b.BlockTotals = 3
		require.NoError(t, Write(&buf, &b))
	}
	require.Equal(t, 3*BlockSize, buf.Len())

	var b Block
	for i := range 3 {
		require.NoError(t, b.UnmarshalBinary(buf.Bytes()[i*BlockSize:]))
		assert.Equal(t, uint32(i), b.BlockNo)
		assert.Equal(t, uint32(i*256), b.TargetAddress)
	}
}

func TestData(t *testing.T) {
	b := New(0, 0, 0)
	copy(b.Payload[:], "hello")
	b.PayloadSize = 5
	assert.Equal(t, []byte("hello"), b.Data())
	b.PayloadSize = 1000
	assert.Len(t, b.Data(), PayloadSize)
}

func TestParseFamily(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{"rp2040", 0xe48bff56, false},
		{"RP2350_ARM_S", 0xe48bff59, false},
		{"0xada52840", 0xada52840, false},
		{"1234", 1234, false},
		{"0x1ffffffff", 0, true},
		{"nosuchchip", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFamily(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "samd21", FamilyName(0x68ed2b88))
	assert.Equal(t, "", FamilyName(1))
	assert.Contains(t, FamilyNames(), "stm32f4")
}
