// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

// Package transfer turns a file into a set of symbol artifacts.
//
// A transfer reads the whole file, optionally compresses it, splits it into
// blocks that each fit a single symbol, and renders every block into its own
// image file. A final envelope artifact describes the file so that a receiver
// can tell when it has every block and check what it reassembled.
//
// Artifacts are staged and moved into the output directory only once every
// one of them has been written, so a failed transfer leaves no partial set
// behind.
package transfer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/locka99/airgap/capacity"
	"github.com/locka99/airgap/envelope"
	"github.com/locka99/airgap/manifest"
	"github.com/locka99/airgap/packet"
	"github.com/locka99/airgap/support/errkind"
	"github.com/locka99/airgap/support/stagingdir"
	"github.com/locka99/airgap/symbol"
)

// stagingPrefix is the name prefix of staging directories.
const stagingPrefix = ".airgap-staging-"

// Summary describes a completed transfer.
type Summary struct {
	// Envelope is the transferred file's envelope.
	Envelope *envelope.Envelope

	// OutputDir is the directory that the artifacts were written to.
	OutputDir string
	// Artifacts are the data block artifacts, in sequence order.
	Artifacts []*symbol.Artifact
	// EnvelopeArtifact is the envelope block's artifact.
	EnvelopeArtifact *symbol.Artifact
	// ManifestPath is the path of the manifest file. It is empty if no manifest
	// was written.
	ManifestPath string

	// Elapsed is how long the transfer took.
	Elapsed time.Duration
}

// Paths returns the paths of every artifact, in sequence order, with the
// envelope artifact last.
func (s *Summary) Paths() []string {
	paths := make([]string, 0, len(s.Artifacts)+1)
	for _, a := range s.Artifacts {
		paths = append(paths, filepath.Join(s.OutputDir, a.Name))
	}
	if s.EnvelopeArtifact != nil {
		paths = append(paths, filepath.Join(s.OutputDir, s.EnvelopeArtifact.Name))
	}
	return paths
}

// WireBytes returns the total number of block bytes rendered into artifacts.
func (s *Summary) WireBytes() (total int64) {
	for _, a := range s.Artifacts {
		total += int64(a.WireLen)
	}
	if s.EnvelopeArtifact != nil {
		total += int64(s.EnvelopeArtifact.WireLen)
	}
	return
}

// Run transfers the file at inputPath into outputDir using the default
// configuration.
func Run(ctx context.Context, inputPath string, s capacity.Strength, outputDir string) (*Summary, error) {
	var cfg Config
	return cfg.Run(ctx, inputPath, s, outputDir)
}

// Run transfers the file at inputPath into outputDir, rendering symbols at
// error-correction strength s.
//
// The returned error carries an errkind.Kind.
func (cfg *Config) Run(ctx context.Context, inputPath string, s capacity.Strength, outputDir string) (*Summary, error) {
	start := cfg.now()
	c := cfg.sizeClass()

	// Validate the symbol configuration before touching the file system.
	if _, err := capacity.Capacity(c, s); err != nil {
		return nil, err
	}

	env, data, err := envelope.Describe(inputPath)
	if err != nil {
		return nil, err
	}
	cfg.logger().Infof("Transferring %q (%d bytes) as %s/%s symbols.", inputPath, len(data), c, s)

	stream, err := cfg.Compression.Compress(data, cfg.compressionLevel())
	if err != nil {
		if errkind.KindOf(err) == errkind.Unknown {
			err = errkind.Wrapf(errkind.Encoding, err, "compressing %q", inputPath)
		}
		return nil, err
	}
	env.Compression = uint32(cfg.Compression)

	blocks, err := packet.Packetize(stream, c, s)
	if err != nil {
		return nil, err
	}
	env.Finalize(stream, blocks)
	env.SetSymbol(c, s)
	cfg.logger().Debugf("Packetized %d stream bytes (%s) into %d block(s).", len(stream), cfg.Compression, len(blocks))

	envBlock, err := env.Block()
	if err != nil {
		return nil, errkind.Wrap(errkind.Encoding, err, "framing envelope")
	}

	name := env.DisplayName()
	if err := checkOutputDir(outputDir, name); err != nil {
		return nil, err
	}

	tempDir := cfg.TempDir
	if tempDir == "" {
		tempDir = outputDir
	}
	sd, err := stagingdir.New(tempDir, stagingPrefix)
	if err != nil {
		return nil, errkind.Wrap(errkind.IO, err, "creating staging directory")
	}
	defer func() {
		if sd != nil {
			if err := sd.Destroy(); err != nil {
				cfg.logger().Warnf("Could not remove staging directory: %s", err)
			}
		}
	}()

	// Render into the staging directory.
	stageDir := sd.Path(".")
	em := cfg.emitter()

	artifacts, err := em.EmitAll(ctx, blocks, c, s, stageDir, name)
	if err != nil {
		return nil, err
	}
	envArtifact, err := em.Emit(envBlock, c, s, stageDir, name)
	if err != nil {
		return nil, err
	}

	var manifestName string
	if cfg.WriteManifest {
		m := manifest.Manifest{Envelope: env}
		m.Add(artifacts...)
		m.Add(envArtifact)

		manifestName = manifest.FileName(name)
		if err := m.Write(sd.Path(manifestName)); err != nil {
			return nil, errkind.Wrap(errkind.IO, err, "writing manifest")
		}
	}

	// Everything is staged; move it into place unless another set for the same
	// name appeared in the meantime.
	if err := checkExistingSet(outputDir, name); err != nil {
		return nil, err
	}
	if _, err := sd.Commit(outputDir); err != nil {
		return nil, errkind.Wrapf(errkind.IO, err, "committing artifacts to %q", outputDir)
	}
	sd = nil

	summary := Summary{
		Envelope:         env,
		OutputDir:        outputDir,
		Artifacts:        artifacts,
		EnvelopeArtifact: envArtifact,
		Elapsed:          cfg.now().Sub(start),
	}
	if manifestName != "" {
		summary.ManifestPath = filepath.Join(outputDir, manifestName)
	}

	cfg.logger().Infof("Wrote %d artifact(s) for %q to %q.", len(artifacts)+1, name, outputDir)
	return &summary, nil
}

// checkOutputDir verifies that path is a directory that holds no artifact set
// for the file called name.
func checkOutputDir(path, name string) error {
	st, err := os.Stat(path)
	if err != nil {
		return errkind.Wrapf(errkind.IO, err, "output location %q", path)
	}
	if !st.IsDir() {
		return errkind.Errorf(errkind.IO, "output location %q is not a directory", path)
	}
	return checkExistingSet(path, name)
}

// checkExistingSet returns an error if dir holds any artifact or manifest for
// the file called name. Writing a new set over an old one would leave the old
// set's extra blocks beside the new envelope.
func checkExistingSet(dir, name string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return errkind.Wrapf(errkind.IO, err, "listing output location %q", dir)
	}

	var existing []string
	for _, e := range entries {
		if _, ok := symbol.ParseArtifactName(name, e.Name()); ok || e.Name() == manifest.FileName(name) {
			existing = append(existing, e.Name())
		}
	}
	if len(existing) > 0 {
		return errkind.Errorf(errkind.IO, "output location %q already holds %d file(s) for %q (first %q); remove them first",
			dir, len(existing), name, existing[0])
	}
	return nil
}
