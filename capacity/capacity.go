// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package capacity defines how many bytes fit into a single optical symbol.
//
// A symbol's capacity depends on its size class (the QR code version, which
// fixes its module grid) and on the error-correction strength: the more
// redundancy a symbol carries, the less room is left for payload. Capacities
// are byte-mode figures, the amount of arbitrary binary data a symbol holds.
//
// The capacity table is read-only. Adding a size class means adding a row to
// profiles; callers do not change.
package capacity

import (
	"sort"
	"strconv"
	"strings"

	"github.com/locka99/airgap/support/errkind"
)

// SizeClass is a discrete symbol size tier. For QR codes, this is the
// version number (1-40); version v is a grid of 17+4v modules per side.
type SizeClass int

const (
	// Version30 is a 137x137 module QR code.
	Version30 SizeClass = 30

	// DefaultSizeClass is the size class used when none is specified.
	DefaultSizeClass = Version30
)

// Modules returns the number of modules per side of a symbol in this class.
func (c SizeClass) Modules() int { return 17 + 4*int(c) }

func (c SizeClass) String() string {
	return "v" + strconv.Itoa(int(c))
}

// Strength is an error-correction strength.
//
// Strengths are ordered from the weakest redundancy (L) to the strongest (H).
type Strength int

const (
	// L recovers roughly 7% of damaged codewords.
	L Strength = iota
	// M recovers roughly 15% of damaged codewords.
	M
	// Q recovers roughly 25% of damaged codewords.
	Q
	// H recovers roughly 30% of damaged codewords.
	H

	numStrengths = int(H) + 1
)

// Strengths lists all strengths, weakest redundancy first.
var Strengths = []Strength{L, M, Q, H}

var strengthNames = [numStrengths]string{"L", "M", "Q", "H"}

var strengthDescriptions = [numStrengths]string{
	"approx 7% recovery",
	"approx 15% recovery",
	"approx 25% recovery",
	"approx 30% recovery",
}

// IsValid returns true if s is one of the four defined strengths.
func (s Strength) IsValid() bool { return s >= L && s <= H }

func (s Strength) String() string {
	if !s.IsValid() {
		return "Strength(" + strconv.Itoa(int(s)) + ")"
	}
	return strengthNames[s]
}

// Description is a human-readable description of s's redundancy.
func (s Strength) Description() string {
	if !s.IsValid() {
		return "unknown"
	}
	return strengthDescriptions[s]
}

// ParseStrength parses a strength name. Parsing is case-insensitive.
func ParseStrength(v string) (Strength, error) {
	for i, name := range strengthNames {
		if strings.EqualFold(v, name) {
			return Strength(i), nil
		}
	}
	return L, errkind.Errorf(errkind.Configuration, "unknown error-correction strength: %q", v)
}

// profile is the capacity of one size class, indexed by Strength.
type profile [numStrengths]int

// profiles holds the byte-mode capacity for every provisioned size class.
var profiles = map[SizeClass]profile{
	Version30: {
		L: 1732,
		M: 1370,
		Q: 982,
		H: 742,
	},
}

// Capacity returns the maximum number of bytes that a single symbol of size
// class c and strength s can hold.
//
// Capacity returns a Configuration error if c is not provisioned or s is not a
// valid Strength.
func Capacity(c SizeClass, s Strength) (int, error) {
	p, ok := profiles[c]
	if !ok {
		return 0, errkind.Errorf(errkind.Configuration, "size class %s is not supported", c)
	}
	if !s.IsValid() {
		return 0, errkind.Errorf(errkind.Configuration, "invalid error-correction strength %s", s)
	}
	return p[s], nil
}

// Provisioned returns the supported size classes, in ascending order.
func Provisioned() []SizeClass {
	classes := make([]SizeClass, 0, len(profiles))
	for c := range profiles {
		classes = append(classes, c)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	return classes
}
