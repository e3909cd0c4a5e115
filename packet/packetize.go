// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package packet

import (
	"sort"

	"github.com/locka99/airgap/capacity"
	"github.com/locka99/airgap/support/errkind"

	"github.com/pkg/errors"
)

// Packetize splits data into Blocks that each fit into a symbol of size class
// c at strength s.
//
// See Split for details.
func Packetize(data []byte, c capacity.SizeClass, s capacity.Strength) ([]*Block, error) {
	limit, err := capacity.Capacity(c, s)
	if err != nil {
		return nil, err
	}
	return Split(data, limit)
}

// Split splits data into Blocks whose wire length is at most limit bytes.
//
// Each block takes as much of the remaining data as fits alongside its own
// sequence number. Empty data produces no blocks; a receiver learns that no
// blocks are expected from the envelope's block count, not from an empty
// symbol.
//
// If limit cannot hold the largest sequence number plus at least one payload
// byte, Split returns a Configuration error without producing any Blocks.
//
// Split is deterministic. The returned Blocks reference data.
func Split(data []byte, limit int) ([]*Block, error) {
	if limit <= MaxSequenceLen {
		return nil, errkind.Errorf(errkind.Configuration,
			"capacity of %d bytes cannot frame a %d-byte sequence number", limit, MaxSequenceLen)
	}
	if len(data) == 0 {
		return nil, nil
	}

	// The first block has the most room, so this is an upper bound.
	blocks := make([]*Block, 0, len(data)/(limit-1)+1)
	for pos, seq := 0, uint64(0); pos < len(data); seq++ {
		room := limit - SequenceLen(seq)

		end := pos + room
		if end > len(data) {
			end = len(data)
		}

		blocks = append(blocks, &Block{
			Sequence: seq,
			Payload:  data[pos:end],
		})
		pos = end
	}
	return blocks, nil
}

// Reassemble reconstructs the stream carried by blocks.
//
// Blocks may be supplied in any order. The envelope block, if present, is
// ignored. Reassemble returns an error if any sequence number is missing or
// duplicated.
func Reassemble(blocks []*Block) ([]byte, error) {
	data := make([]*Block, 0, len(blocks))
	size := 0
	for _, b := range blocks {
		if b.IsEnvelope() {
			continue
		}
		data = append(data, b)
		size += len(b.Payload)
	}
	sort.Slice(data, func(i, j int) bool { return data[i].Sequence < data[j].Sequence })

	buf := make([]byte, 0, size)
	for i, b := range data {
		switch {
		case b.Sequence < uint64(i):
			return nil, errors.Errorf("duplicate block #%d", b.Sequence)
		case b.Sequence > uint64(i):
			return nil, errors.Errorf("missing block #%d", i)
		}
		buf = append(buf, b.Payload...)
	}
	return buf, nil
}
