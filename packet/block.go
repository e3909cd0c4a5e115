// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package packet

import (
	"math"

	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
)

// EnvelopeSequence is the reserved sequence number of the envelope block.
const EnvelopeSequence = uint64(math.MaxUint64)

// MaxSequenceLen is the number of bytes needed to encode the largest possible
// sequence number.
var MaxSequenceLen = proto.SizeVarint(math.MaxUint64)

// Block is a single framed unit of a transfer. Each Block is rendered into
// exactly one symbol.
type Block struct {
	// Sequence is the block's position in the transfer.
	Sequence uint64
	// Payload is the block's slice of the transferred stream.
	//
	// Blocks produced by Split reference the input buffer directly; they must
	// not be modified, and must not outlive it if it is reused.
	Payload []byte
}

// SequenceLen returns the number of bytes that seq occupies on the wire.
func SequenceLen(seq uint64) int { return proto.SizeVarint(seq) }

// IsEnvelope returns true if b is the envelope block.
func (b *Block) IsEnvelope() bool { return b.Sequence == EnvelopeSequence }

// WireLen returns the number of bytes that b occupies on the wire.
func (b *Block) WireLen() int { return SequenceLen(b.Sequence) + len(b.Payload) }

// AppendWire appends b's wire encoding to buf and returns the extended buffer.
func (b *Block) AppendWire(buf []byte) []byte {
	buf = append(buf, proto.EncodeVarint(b.Sequence)...)
	return append(buf, b.Payload...)
}

// Wire returns b's wire encoding in a newly-allocated buffer.
func (b *Block) Wire() []byte { return b.AppendWire(make([]byte, 0, b.WireLen())) }

// Parse decodes a Block from its wire encoding.
//
// The returned Block's Payload references wire.
func Parse(wire []byte) (*Block, error) {
	if len(wire) == 0 {
		return nil, errors.New("empty block")
	}

	seq, n := proto.DecodeVarint(wire)
	if n == 0 {
		return nil, errors.New("block does not begin with a valid sequence number")
	}
	return &Block{
		Sequence: seq,
		Payload:  wire[n:],
	}, nil
}
