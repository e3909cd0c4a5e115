// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package envelope describes a transferred file: its name, size, integrity
// digests, and how many blocks carry it.
//
// The Envelope travels with the transfer as a distinguished block, using the
// reserved sequence number packet.EnvelopeSequence, so a receiver can tell
// when it has every block and can verify what it reassembled before trusting
// it. An Envelope with zero blocks describes an empty file.
//
// Building an Envelope is a two-step process. Describe (or New) captures
// everything that depends only on the file. Finalize records the block count
// and must be called once packetization has finished.
package envelope

import (
	"bytes"
	"hash/crc32"
	"os"
	"path/filepath"

	"github.com/locka99/airgap/capacity"
	"github.com/locka99/airgap/packet"
	"github.com/locka99/airgap/support/errkind"

	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
	"github.com/zeebo/blake3"
)

// Version is the current envelope format version.
const Version = 1

// Describe reads the file at path fully into memory and returns its Envelope
// along with its content.
func Describe(path string) (*Envelope, []byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, errkind.Wrapf(errkind.IO, err, "reading %q", path)
	}
	return New(filepath.Base(path), data), data, nil
}

// New returns the Envelope for a file named name with content data.
func New(name string, data []byte) *Envelope {
	digest := blake3.Sum256(data)
	return &Envelope{
		Version: Version,
		Name:    []byte(name),
		Size:    uint64(len(data)),
		Crc32:   crc32.ChecksumIEEE(data),
		Blake3:  digest[:],
	}
}

// DisplayName returns the file name as a string.
func (e *Envelope) DisplayName() string { return string(e.Name) }

// StreamCompression returns the Compression of the packetized stream.
func (e *Envelope) StreamCompression() Compression { return Compression(e.Compression) }

// SymbolStrength returns the error-correction strength of the transfer.
func (e *Envelope) SymbolStrength() capacity.Strength { return capacity.Strength(e.Strength) }

// SymbolSizeClass returns the symbol size class of the transfer.
func (e *Envelope) SymbolSizeClass() capacity.SizeClass { return capacity.SizeClass(e.SizeClass) }

// SetSymbol records the symbol format used for the transfer.
func (e *Envelope) SetSymbol(c capacity.SizeClass, s capacity.Strength) {
	e.SizeClass = uint32(c)
	e.Strength = uint32(s)
}

// Finalize records the result of packetizing stream, the (possibly
// compressed) file content, into blocks.
func (e *Envelope) Finalize(stream []byte, blocks []*packet.Block) {
	e.StreamSize = uint64(len(stream))
	e.NumBlocks = uint64(len(blocks))
}

// Block returns e framed as the envelope block.
func (e *Envelope) Block() (*packet.Block, error) {
	data, err := proto.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, "marshalling envelope")
	}
	return &packet.Block{
		Sequence: packet.EnvelopeSequence,
		Payload:  data,
	}, nil
}

// FromBlock decodes the Envelope carried by b.
func FromBlock(b *packet.Block) (*Envelope, error) {
	if !b.IsEnvelope() {
		return nil, errors.Errorf("block #%d is not an envelope block", b.Sequence)
	}

	var e Envelope
	if err := proto.Unmarshal(b.Payload, &e); err != nil {
		return nil, errors.Wrap(err, "unmarshalling envelope")
	}
	if e.Version != Version {
		return nil, errors.Errorf("unsupported envelope version %d", e.Version)
	}
	return &e, nil
}

// Verify checks that data is the file that e describes.
func (e *Envelope) Verify(data []byte) error {
	if size := uint64(len(data)); size != e.Size {
		return errors.Errorf("size mismatch: have %d bytes, expected %d", size, e.Size)
	}
	if sum := crc32.ChecksumIEEE(data); sum != e.Crc32 {
		return errors.Errorf("CRC-32 mismatch: have %08x, expected %08x", sum, e.Crc32)
	}
	if len(e.Blake3) > 0 {
		if digest := blake3.Sum256(data); !bytes.Equal(digest[:], e.Blake3) {
			return errors.New("BLAKE3 digest mismatch")
		}
	}
	return nil
}

// Unpack rebuilds the file described by e from the transfer's blocks.
//
// blocks may be in any order and may include the envelope block. The result is
// decompressed and verified against e.
func (e *Envelope) Unpack(blocks []*packet.Block) ([]byte, error) {
	n := uint64(0)
	for _, b := range blocks {
		if !b.IsEnvelope() {
			n++
		}
	}
	if n != e.NumBlocks {
		return nil, errors.Errorf("have %d blocks, expected %d", n, e.NumBlocks)
	}

	stream, err := packet.Reassemble(blocks)
	if err != nil {
		return nil, err
	}
	if size := uint64(len(stream)); size != e.StreamSize {
		return nil, errors.Errorf("stream size mismatch: have %d bytes, expected %d", size, e.StreamSize)
	}

	data, err := e.StreamCompression().Decompress(stream)
	if err != nil {
		return nil, err
	}
	if err := e.Verify(data); err != nil {
		return nil, err
	}
	return data, nil
}
