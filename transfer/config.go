// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package transfer

import (
	"time"

	"github.com/locka99/airgap/capacity"
	"github.com/locka99/airgap/envelope"
	"github.com/locka99/airgap/support/logging"
	"github.com/locka99/airgap/symbol"
)

// Config is a transfer configuration. The zero value is a valid configuration
// that renders uncompressed PNG QR symbols of the default size class.
type Config struct {
	// SizeClass is the symbol size class. If zero, capacity.DefaultSizeClass is
	// used.
	SizeClass capacity.SizeClass

	// Compression is the compression applied to the file content before it is
	// packetized.
	Compression envelope.Compression
	// CompressionLevel is the compression level to apply to Compression, if
	// applicable. Zero selects the compressor's default.
	CompressionLevel int

	// Format is the image format of the written artifacts.
	Format symbol.ImageFormat
	// Encoder is the symbol encoder. If nil, a default QR encoder is used.
	Encoder symbol.Encoder
	// Workers is the maximum number of symbols rendered at once. If <= 0, the
	// number of CPUs is used.
	Workers int

	// TempDir is the directory in which artifacts are staged. If empty, they
	// are staged in the output directory itself.
	TempDir string

	// WriteManifest, if true, writes a manifest file alongside the artifacts.
	WriteManifest bool

	// Logger, if not nil, is the logger to use.
	Logger logging.L

	// NowFunc, if not nil, is the function to use to get the current time. If
	// nil, time.Now will be used.
	NowFunc func() time.Time
}

func (cfg *Config) sizeClass() capacity.SizeClass {
	if cfg.SizeClass == 0 {
		return capacity.DefaultSizeClass
	}
	return cfg.SizeClass
}

func (cfg *Config) compressionLevel() int {
	if cfg.CompressionLevel == 0 {
		return -1
	}
	return cfg.CompressionLevel
}

func (cfg *Config) logger() logging.L { return logging.Must(cfg.Logger) }

func (cfg *Config) now() time.Time {
	if cfg.NowFunc != nil {
		return cfg.NowFunc()
	}
	return time.Now()
}

func (cfg *Config) emitter() *symbol.Emitter {
	return &symbol.Emitter{
		Encoder: cfg.Encoder,
		Format:  cfg.Format,
		Workers: cfg.Workers,
		Logger:  cfg.Logger,
	}
}
