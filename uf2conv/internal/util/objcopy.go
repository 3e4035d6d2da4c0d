// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package util

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/marcinbor85/gohex"
)

// Section is a piece of a firmware image placed at a physical address.
type Section struct {
	Paddr uint64 // location of the section in the Flash/ROM
	Data  []byte
}

type Sections []*Section

// ReadELF reads the loadable sections of the program. The order of the
// returned sections is unspecified.
func ReadELF(name string) (Sections, error) {
	f, err := elf.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ss := make(Sections, 0, 16)
	for _, s := range f.Sections {
		if s.Type != elf.SHT_PROGBITS || s.Flags&elf.SHF_ALLOC == 0 {
			continue
		}
		data, err := s.Data()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Name, err)
		}
		if len(data) == 0 {
			continue
		}
		paddr, ok := loadAddr(f, s.Offset)
		if !ok {
			Warn("readelf: section '%s' isn't in any PT_LOAD segment", s.Name)
			continue
		}
		ss = append(ss, &Section{paddr, data})
	}
	return ss, nil
}

func loadAddr(f *elf.File, off uint64) (uint64, bool) {
	for _, p := range f.Progs {
		if p.Type == elf.PT_LOAD && p.Off <= off && off < p.Off+p.Filesz {
			return p.Paddr + off - p.Off, true
		}
	}
	return 0, false
}

// ReadHex reads an Intel HEX file. Every contiguous data segment becomes
// a section.
func ReadHex(name string) (Sections, error) {
	r, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(r); err != nil {
		return nil, err
	}
	segs := mem.GetDataSegments()
	ss := make(Sections, len(segs))
	for i, seg := range segs {
		ss[i] = &Section{uint64(seg.Address), seg.Data}
	}
	return ss, nil
}

// ReadBins reads binary files according to the BIN1:ADDR1[,BIN2:ADDR2...]
// description and returns them as sections.
func ReadBins(descr string) (Sections, error) {
	bins := strings.Split(descr, ",")
	ss := make(Sections, len(bins))
	for k, ba := range bins {
		i := strings.LastIndexByte(ba, ':')
		if i <= 0 {
			return nil, fmt.Errorf("bad '%s' in the -inc option", ba)
		}
		bin, addr := ba[:i], ba[i+1:]
		s := new(Section)
		var err error
		s.Paddr, err = strconv.ParseUint(addr, 0, 32)
		if err != nil {
			return nil, fmt.Errorf("bad address in '%s': %s", ba, err)
		}
		s.Data, err = os.ReadFile(bin)
		if err != nil {
			return nil, err
		}
		ss[k] = s
	}
	return ss, nil
}

// ImageKind returns "elf", "hex" or "bin" depending on the file name
// extension.
func ImageKind(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".elf":
		return "elf"
	case ".hex", ".ihex", ".ihx":
		return "hex"
	}
	return "bin"
}

// ReadSections reads an ELF or Intel HEX file.
func ReadSections(name string) (Sections, error) {
	switch ImageKind(name) {
	case "elf":
		return ReadELF(name)
	case "hex":
		return ReadHex(name)
	}
	return nil, fmt.Errorf("%s: not an ELF or HEX file", name)
}

// SortByPaddr sorts sections according to the Paddr field.
func (ss Sections) SortByPaddr() {
	slices.SortStableFunc(ss, func(a, b *Section) int {
		switch {
		case a.Paddr < b.Paddr:
			return -1
		case a.Paddr > b.Paddr:
			return 1
		}
		return 0
	})
}

// Size returns the size of the flattened image.
func (ss Sections) Size() int {
	if len(ss) == 0 {
		return 0
	}
	lo, hi := ^uint64(0), uint64(0)
	for _, s := range ss {
		lo = min(lo, s.Paddr)
		hi = max(hi, s.Paddr+uint64(len(s.Data)))
	}
	return int(hi - lo)
}

// Flatten sorts sections by Paddr and writes their data to w. The gaps
// between sections are filled with the pad byte.
func (ss Sections) Flatten(w io.Writer, pad byte) (n int, err error) {
	if len(ss) == 0 {
		return
	}
	ss.SortByPaddr()
	pa := ss[0].Paddr
	var padCache []byte
	for _, s := range ss {
		if s.Paddr < pa {
			err = errors.New("flatten: overlapping sections")
			return
		}
		var m int
		if gap := int(s.Paddr - pa); gap != 0 {
			m, err = w.Write(PadBytes(&padCache, gap, pad))
			n += m
			pa += uint64(m)
			if err != nil {
				return
			}
		}
		m, err = w.Write(s.Data)
		n += m
		pa += uint64(m)
		if err != nil {
			return
		}
	}
	return
}

// PadBytes returns a slice of n bytes equal b. The cache is reused if it is
// big enough.
func PadBytes(cache *[]byte, n int, b byte) []byte {
	if cache == nil {
		cache = new([]byte)
	}
	if len(*cache) < n || (n > 0 && (*cache)[0] != b) {
		*cache = make([]byte, n)
		for i := range *cache {
			(*cache)[i] = b
		}
	}
	return (*cache)[:n]
}
