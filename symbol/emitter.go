// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package symbol renders blocks into image artifacts.
//
// Each block's wire bytes are handed to an Encoder, which produces an image,
// and the image is written to its own file. Artifact names embed the block's
// sequence number so that they are unique within a transfer and sort into
// order for a human operator; the sequence number inside the symbol remains
// authoritative.
package symbol

import (
	"context"
	"fmt"
	"hash/crc32"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/locka99/airgap/capacity"
	"github.com/locka99/airgap/packet"
	"github.com/locka99/airgap/support/bufferpool"
	"github.com/locka99/airgap/support/errkind"
	"github.com/locka99/airgap/support/fmtutil"
	"github.com/locka99/airgap/support/logging"

	"golang.org/x/sync/errgroup"
)

// Artifact describes a rendered block.
type Artifact struct {
	// Sequence is the sequence number of the rendered block.
	Sequence uint64
	// Name is the artifact's file name.
	Name string
	// WireLen is the number of block bytes encoded into the artifact.
	WireLen int
	// Crc32 is the IEEE CRC-32 of the encoded block bytes.
	Crc32 uint32
}

// ArtifactName returns the file name of the artifact for block seq of the file
// called name.
func ArtifactName(name string, seq uint64, f ImageFormat) string {
	if seq == packet.EnvelopeSequence {
		return fmt.Sprintf("%s-envelope.%s", name, f.Ext())
	}
	return fmt.Sprintf("%s-%d.%s", name, seq, f.Ext())
}

// ParseArtifactName reports whether file is the name of an artifact for the
// file called name, as produced by ArtifactName in any ImageFormat, and if so
// returns its block sequence number.
func ParseArtifactName(name, file string) (uint64, bool) {
	rest := strings.TrimPrefix(file, name+"-")
	if rest == file {
		return 0, false
	}

	dot := strings.LastIndexByte(rest, '.')
	if dot < 0 {
		return 0, false
	}
	if _, err := ParseImageFormat(rest[dot+1:]); err != nil {
		return 0, false
	}

	stem := rest[:dot]
	if stem == "envelope" {
		return packet.EnvelopeSequence, true
	}
	seq, err := strconv.ParseUint(stem, 10, 64)
	if err != nil || strconv.FormatUint(seq, 10) != stem {
		return 0, false
	}
	return seq, true
}

// Emitter renders blocks into image files.
type Emitter struct {
	// Encoder is the symbol encoder. If nil, a default QR encoder is used.
	Encoder Encoder
	// Format is the image format of the written artifacts.
	Format ImageFormat

	// Workers is the maximum number of blocks rendered at once by EmitAll. If
	// <= 0, the number of CPUs is used.
	Workers int

	// Logger is the logger instance to use. If nil, no logs will be generated.
	Logger logging.L
}

var defaultEncoder = &QR{}

func (e *Emitter) encoder() Encoder {
	if e.Encoder != nil {
		return e.Encoder
	}
	return defaultEncoder
}

func (e *Emitter) workers() int {
	if e.Workers > 0 {
		return e.Workers
	}
	return runtime.NumCPU()
}

func (e *Emitter) logger() logging.L { return logging.Must(e.Logger) }

// Emit renders b as a symbol of size class c and strength s, and writes it to
// a file in dir. name is the transferred file's name.
func (e *Emitter) Emit(b *packet.Block, c capacity.SizeClass, s capacity.Strength, dir, name string) (*Artifact, error) {
	limit, err := capacity.Capacity(c, s)
	if err != nil {
		return nil, err
	}
	return e.emit(b.Wire(), b.Sequence, limit, c, s, dir, name)
}

// EmitAll renders every block in blocks, fanning the work out across up to
// Workers goroutines.
//
// The first error stops any further rendering and is returned; no partial
// result is returned alongside it. On success, the returned Artifacts are in
// the same order as blocks.
func (e *Emitter) EmitAll(ctx context.Context, blocks []*packet.Block, c capacity.SizeClass, s capacity.Strength,
	dir, name string) ([]*Artifact, error) {

	limit, err := capacity.Capacity(c, s)
	if err != nil {
		return nil, err
	}

	frames := bufferpool.Pool{Size: limit}
	artifacts := make([]*Artifact, len(blocks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers())
	for i, b := range blocks {
		if gctx.Err() != nil {
			break
		}

		i, b := i, b
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			emitWorkersBusy.Inc()
			defer emitWorkersBusy.Dec()

			frame := frames.Get()
			defer frame.Release()

			a, err := e.emit(frame.Fill(b.AppendWire), b.Sequence, limit, c, s, dir, name)
			if err != nil {
				return err
			}
			artifacts[i] = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func (e *Emitter) emit(wire []byte, seq uint64, limit int, c capacity.SizeClass, s capacity.Strength,
	dir, name string) (*Artifact, error) {

	start := time.Now()

	// The packetizer never produces an oversized block, so this is an
	// inconsistency that must not be papered over by truncating.
	if len(wire) > limit {
		emitErrors.WithLabelValues("encoding").Inc()
		return nil, errkind.Errorf(errkind.Encoding,
			"block #%d is %d bytes, exceeding the %d-byte capacity of a %s-%s symbol", seq, len(wire), limit, c, s)
	}

	img, err := e.encoder().Encode(wire, c, s)
	if err != nil {
		emitErrors.WithLabelValues("encoding").Inc()
		return nil, errkind.Wrapf(errkind.Encoding, err, "encoding block #%d", seq)
	}

	a := Artifact{
		Sequence: seq,
		Name:     ArtifactName(name, seq, e.Format),
		WireLen:  len(wire),
		Crc32:    crc32.ChecksumIEEE(wire),
	}
	path := filepath.Join(dir, a.Name)
	if err := e.Format.Save(img, path); err != nil {
		emitErrors.WithLabelValues("io").Inc()
		return nil, errkind.Wrapf(errkind.IO, err, "writing block #%d to %q", seq, path)
	}

	emitArtifacts.Inc()
	emitWireBytes.Add(float64(len(wire)))
	emitRenderSeconds.Observe(time.Since(start).Seconds())

	e.logger().Debugf("Wrote block #%d (%d bytes, prefix %s) to %q.",
		seq, len(wire), fmtutil.HexSlice(wire[:packet.SequenceLen(seq)]), a.Name)
	return &a, nil
}
