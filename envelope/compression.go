// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package envelope

import (
	"bytes"
	"io"
	"strings"

	"github.com/locka99/airgap/support/errkind"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
)

// Compression is a compression applied to a file before it is packetized.
//
// Fewer bytes mean fewer symbols to display and scan. Already-compressed
// files gain nothing, which is why NONE is the default.
type Compression uint32

const (
	// CompressionNone packetizes the file as-is.
	CompressionNone Compression = iota
	// CompressionSnappy uses Google's Snappy block format. It is fast, with a
	// modest ratio.
	CompressionSnappy
	// CompressionGzip uses gzip.
	CompressionGzip
	// CompressionZstd uses Zstandard, which usually gives the best ratio.
	CompressionZstd
)

// compressionNames is indexed by Compression.
var compressionNames = []string{"NONE", "SNAPPY", "GZIP", "ZSTD"}

func (c Compression) String() string {
	if int(c) < len(compressionNames) {
		return compressionNames[c]
	}
	return "UNKNOWN"
}

// ParseCompression parses a compression name. Parsing is case-insensitive.
func ParseCompression(v string) (Compression, error) {
	for i, name := range compressionNames {
		if strings.EqualFold(v, name) {
			return Compression(i), nil
		}
	}
	return CompressionNone, errkind.Errorf(errkind.Configuration, "unknown compression type: %q", v)
}

// Compress compresses data.
//
// level is the compression level for GZIP and ZSTD; a negative level selects
// the library default. It is ignored by the other compressions.
func (c Compression) Compress(data []byte, level int) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil

	case CompressionSnappy:
		return snappy.Encode(nil, data), nil

	case CompressionGzip:
		if level < 0 {
			level = gzip.DefaultCompression
		}

		var buf bytes.Buffer
		gw, err := gzip.NewWriterLevel(&buf, level)
		if err != nil {
			return nil, errkind.Wrap(errkind.Configuration, err, "creating gzip writer")
		}
		if _, err := gw.Write(data); err != nil {
			return nil, errors.Wrap(err, "gzip compression")
		}
		if err := gw.Close(); err != nil {
			return nil, errors.Wrap(err, "gzip compression")
		}
		return buf.Bytes(), nil

	case CompressionZstd:
		var opts []zstd.EOption
		if level >= 0 {
			opts = append(opts, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(level)))
		}

		enc, err := zstd.NewWriter(nil, opts...)
		if err != nil {
			return nil, errkind.Wrap(errkind.Configuration, err, "creating zstd encoder")
		}
		defer func() {
			_ = enc.Close()
		}()
		return enc.EncodeAll(data, make([]byte, 0, len(data))), nil

	default:
		return nil, errkind.Errorf(errkind.Configuration, "unknown compression: %s", c)
	}
}

// Decompress reverses Compress.
func (c Compression) Decompress(data []byte) ([]byte, error) {
	switch c {
	case CompressionNone:
		return data, nil

	case CompressionSnappy:
		out, err := snappy.Decode(nil, data)
		if err != nil {
			return nil, errors.Wrap(err, "snappy decompression")
		}
		return out, nil

	case CompressionGzip:
		gr, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, errors.Wrap(err, "creating gzip reader")
		}
		out, err := io.ReadAll(gr)
		if err != nil {
			return nil, errors.Wrap(err, "gzip decompression")
		}
		return out, gr.Close()

	case CompressionZstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, errors.Wrap(err, "creating zstd decoder")
		}
		defer dec.Close()

		out, err := dec.DecodeAll(data, nil)
		if err != nil {
			return nil, errors.Wrap(err, "zstd decompression")
		}
		return out, nil

	default:
		return nil, errors.Errorf("unknown compression: %s", c)
	}
}

// CompressionFlag is a pflag.Value implementation that stores a compression
// value.
type CompressionFlag Compression

var _ pflag.Value = (*CompressionFlag)(nil)

func (cf *CompressionFlag) String() string { return Compression(*cf).String() }

// Set implements pflag.Value.
func (cf *CompressionFlag) Set(v string) error {
	c, err := ParseCompression(v)
	if err != nil {
		return err
	}
	*cf = CompressionFlag(c)
	return nil
}

// Type implements pflag.Value.
func (cf *CompressionFlag) Type() string { return "envelope.Compression" }

// Value returns the compression value held by this flag.
func (cf CompressionFlag) Value() Compression { return Compression(cf) }

// CompressionFlagValues returns the list of possible values for a
// CompressionFlag.
func CompressionFlagValues() string { return strings.Join(compressionNames, ", ") }
