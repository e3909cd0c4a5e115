// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package manifest records what a transfer produced.
//
// The manifest is a sidecar file kept on the sending side. It is not
// transferred; it lets an operator audit an artifact set, or check a scanned
// block against what was sent.
//
// A manifest file is a protostream of the transfer's Envelope followed by one
// BlockRecord per artifact, in sequence order, with the envelope artifact
// last.
package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/locka99/airgap/envelope"
	"github.com/locka99/airgap/packet"
	"github.com/locka99/airgap/support/protostream"
	"github.com/locka99/airgap/symbol"

	"github.com/golang/protobuf/proto"
	"github.com/pkg/errors"
)

// FileName returns the manifest file name for a transferred file called name.
func FileName(name string) string { return name + ".manifest.protostream" }

// Manifest is the content of a manifest file.
type Manifest struct {
	Envelope *envelope.Envelope
	Blocks   []*BlockRecord
}

// Add appends a record for each of artifacts.
func (m *Manifest) Add(artifacts ...*symbol.Artifact) {
	for _, a := range artifacts {
		m.Blocks = append(m.Blocks, &BlockRecord{
			Sequence: a.Sequence,
			Length:   uint32(a.WireLen),
			Crc32:    a.Crc32,
			Artifact: a.Name,
		})
	}
}

// Write writes m to a new file at path.
func (m *Manifest) Write(path string) error {
	if m.Envelope == nil {
		return errors.New("manifest has no envelope")
	}

	fd, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if fd != nil {
			_ = fd.Close()
		}
	}()

	bio := bufio.NewWriter(fd)
	var enc protostream.Encoder
	if _, err := enc.Write(bio, m.Envelope); err != nil {
		return errors.Wrap(err, "writing envelope")
	}
	for _, r := range m.Blocks {
		if _, err := enc.Write(bio, r); err != nil {
			return errors.Wrapf(err, "writing record for block #%d", r.Sequence)
		}
	}

	if err := bio.Flush(); err != nil {
		return err
	}
	if err := fd.Close(); err != nil {
		return err
	}
	fd = nil // Don't close in defer.
	return nil
}

// Load reads the manifest file at path.
func Load(path string) (*Manifest, error) {
	fd, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fd.Close()

	br := bufio.NewReader(fd)
	var dec protostream.Decoder

	var m Manifest
	m.Envelope = &envelope.Envelope{}
	if _, err := dec.Read(br, m.Envelope); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, errors.Wrap(err, "reading envelope")
	}

	for {
		var r BlockRecord
		switch _, err := dec.Read(br, &r); err {
		case nil:
			m.Blocks = append(m.Blocks, &r)
		case io.EOF:
			return &m, nil
		default:
			return nil, errors.Wrapf(err, "reading block record #%d", len(m.Blocks))
		}
	}
}

// Check verifies that the manifest is complete: one record per data block, in
// sequence order, and one for the envelope.
func (m *Manifest) Check() error {
	if m.Envelope == nil {
		return errors.New("manifest has no envelope")
	}

	// One record per data block plus the envelope's, without overflowing on a
	// corrupt block count.
	n := uint64(len(m.Blocks))
	if n == 0 || n-1 != m.Envelope.NumBlocks {
		return errors.Errorf("manifest has %d records, expected %d data records and the envelope's",
			n, m.Envelope.NumBlocks)
	}
	for i, r := range m.Blocks[:len(m.Blocks)-1] {
		if r.Sequence != uint64(i) {
			return errors.Errorf("record #%d is for block #%d", i, r.Sequence)
		}
	}
	if last := m.Blocks[len(m.Blocks)-1]; last.Sequence != packet.EnvelopeSequence {
		return errors.Errorf("last record is for block #%d, not the envelope", last.Sequence)
	}
	return nil
}

// Dump writes a human-readable rendition of m to w.
func (m *Manifest) Dump(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "# envelope\n%s", proto.MarshalTextString(m.Envelope)); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "# %d records\n", len(m.Blocks)); err != nil {
		return err
	}
	for _, r := range m.Blocks {
		seq := fmt.Sprint(r.Sequence)
		if r.Sequence == packet.EnvelopeSequence {
			seq = "envelope"
		}
		if _, err := fmt.Fprintf(w, "%-10s %6d bytes  crc32=%08x  %s\n", seq, r.Length, r.Crc32, r.Artifact); err != nil {
			return err
		}
	}
	return nil
}
