// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conv

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/embeddedgo/uf2tools/uf2conv/internal/uf2"
)

// image is an in-memory io.WriterAt that grows with zeros.
type image struct {
	buf []byte
}

func (m *image) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	copy(m.buf[off:], p)
	return len(p), nil
}

func pattern(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i%251 + 1)
	}
	return p
}

func encode(t *testing.T, data []byte, p Params) []byte {
	t.Helper()
	var out bytes.Buffer
	_, err := Encode(&out, bytes.NewReader(data), int64(len(data)), p)
	require.NoError(t, err)
	return out.Bytes()
}

func decode(t *testing.T, stream []byte, p Params) ([]byte, *Report) {
	t.Helper()
	var img image
	rep, err := Decode(&img, bytes.NewReader(stream), int64(len(stream)), p)
	require.NoError(t, err)
	return img.buf, rep
}

func splitBlocks(t *testing.T, stream []byte) []uf2.Block {
	t.Helper()
	require.Zero(t, len(stream)%uf2.BlockSize)
	blocks := make([]uf2.Block, len(stream)/uf2.BlockSize)
	for i := range blocks {
		require.NoError(t, blocks[i].UnmarshalBinary(stream[i*uf2.BlockSize:]))
	}
	return blocks
}

func joinBlocks(t *testing.T, blocks []uf2.Block) []byte {
	t.Helper()
	var buf []byte
	for i := range blocks {
		var err error
		buf, err = blocks[i].AppendBinary(buf)
		require.NoError(t, err)
	}
	return buf
}

func params(chunk int, shortTail bool) Params {
	p := DefaultParams(ToUF2)
	p.ChunkSize = chunk
	p.ShortTail = shortTail
	return p
}
