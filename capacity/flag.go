// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package capacity

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// StrengthFlag is a pflag.Value implementation that stores a Strength.
type StrengthFlag Strength

var _ pflag.Value = (*StrengthFlag)(nil)

func (sf *StrengthFlag) String() string { return Strength(*sf).String() }

// Set implements pflag.Value.
func (sf *StrengthFlag) Set(v string) error {
	s, err := ParseStrength(v)
	if err != nil {
		return err
	}
	*sf = StrengthFlag(s)
	return nil
}

// Type implements pflag.Value.
func (sf *StrengthFlag) Type() string { return "capacity.Strength" }

// Value returns the strength held by this flag.
func (sf StrengthFlag) Value() Strength { return Strength(sf) }

// StrengthFlagValues returns a help string describing each Strength.
func StrengthFlagValues() string {
	opts := make([]string, len(Strengths))
	for i, s := range Strengths {
		opts[i] = fmt.Sprintf("%s (%s)", s, s.Description())
	}
	return strings.Join(opts, ", ")
}
