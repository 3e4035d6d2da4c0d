// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package conv

import "github.com/tidwall/btree"

// extents records the byte ranges written to the output image.
type extents struct {
	m    btree.Map[int64, int64] // start -> end
	dups int                     // ranges starting where another one starts
}

func (e *extents) add(start, end int64) {
	if old, ok := e.m.Get(start); ok {
		e.dups++
		if old >= end {
			return
		}
	}
	e.m.Set(start, end)
}

type extentStats struct {
	End       int64 // end of the highest range
	Holes     int   // unwritten gaps below End
	HoleBytes int64
	Overlaps  int
}

func (e *extents) stats() extentStats {
	s := extentStats{Overlaps: e.dups}
	e.m.Scan(func(start, end int64) bool {
		switch {
		case start > s.End:
			s.Holes++
			s.HoleBytes += start - s.End
		case start < s.End:
			s.Overlaps++
		}
		s.End = max(s.End, end)
		return true
	})
	return s
}
