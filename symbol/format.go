// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package symbol

import (
	"bufio"
	"image"
	"image/png"
	"io"
	"os"
	"strings"

	"github.com/locka99/airgap/support/errkind"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ImageFormat is the raster file format of an artifact.
//
// Only lossless formats are offered; lossy compression blurs module edges.
type ImageFormat int

const (
	// PNG is the Portable Network Graphics format.
	PNG ImageFormat = iota
	// BMP is the Windows bitmap format.
	BMP
	// TIFF is the Tagged Image File Format, deflate-compressed.
	TIFF
)

// imageFormatNames is indexed by ImageFormat, and doubles as its extension.
var imageFormatNames = []string{"png", "bmp", "tiff"}

func (f ImageFormat) String() string {
	if f >= 0 && int(f) < len(imageFormatNames) {
		return imageFormatNames[f]
	}
	return "unknown"
}

// Ext returns the file extension for f, without a leading dot.
func (f ImageFormat) Ext() string { return f.String() }

// ParseImageFormat parses an image format name. Parsing is case-insensitive.
func ParseImageFormat(v string) (ImageFormat, error) {
	for i, name := range imageFormatNames {
		if strings.EqualFold(v, name) {
			return ImageFormat(i), nil
		}
	}
	return PNG, errkind.Errorf(errkind.Configuration, "unknown image format: %q", v)
}

// Encode writes img to w in format f.
func (f ImageFormat) Encode(w io.Writer, img image.Image) error {
	switch f {
	case PNG:
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		return enc.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	default:
		return errors.Errorf("unknown image format: %s", f)
	}
}

// Save writes img to a new file at path in format f.
func (f ImageFormat) Save(img image.Image, path string) error {
	fd, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if fd != nil {
			// Ignore this error. We explicitly close fd below and propagate that
			// error; this is just cleanup.
			_ = fd.Close()
		}
	}()

	bio := bufio.NewWriter(fd)
	if err := f.Encode(bio, img); err != nil {
		return errors.Wrapf(err, "encoding %s", f)
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

// ImageFormatFlag is a pflag.Value implementation that stores an ImageFormat.
type ImageFormatFlag ImageFormat

var _ pflag.Value = (*ImageFormatFlag)(nil)

func (ff *ImageFormatFlag) String() string { return ImageFormat(*ff).String() }

// Set implements pflag.Value.
func (ff *ImageFormatFlag) Set(v string) error {
	f, err := ParseImageFormat(v)
	if err != nil {
		return err
	}
	*ff = ImageFormatFlag(f)
	return nil
}

// Type implements pflag.Value.
func (ff *ImageFormatFlag) Type() string { return "symbol.ImageFormat" }

// Value returns the image format held by this flag.
func (ff ImageFormatFlag) Value() ImageFormat { return ImageFormat(ff) }

// ImageFormatFlagValues returns the list of possible values for an
// ImageFormatFlag.
func ImageFormatFlagValues() string { return strings.Join(imageFormatNames, ", ") }
