// Copyright 2025 The Embedded Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uf2

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

var families = map[string]uint32{
	"rp2040":        0xe48bff56,
	"absolute":      0xe48bff57,
	"data":          0xe48bff58,
	"rp2350_arm_s":  0xe48bff59,
	"rp2350_riscv":  0xe48bff5a,
	"rp2350_arm_ns": 0xe48bff5b,
	"samd21":        0x68ed2b88,
	"samd51":        0x55114460,
	"nrf52":         0x1b57745f,
	"nrf52840":      0xada52840,
	"stm32f1":       0x5ee21072,
	"stm32f4":       0x57755a57,
	"esp32s2":       0xbfdd4eee,
	"esp32s3":       0xc47e5767,
}

// FamilyNames returns the sorted list of known family names.
func FamilyNames() []string {
	return slices.Sorted(maps.Keys(families))
}

// ParseFamily accepts a known family name or a 32-bit number (with an
// optional base prefix).
func ParseFamily(s string) (uint32, error) {
	if id, ok := families[strings.ToLower(s)]; ok {
		return id, nil
	}
	u, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("bad family ID: %q", s)
	}
	return uint32(u), nil
}

// FamilyName returns the name of a known family or an empty string.
func FamilyName(id uint32) string {
	for name, v := range families {
		if v == id {
			return name
		}
	}
	return ""
}
