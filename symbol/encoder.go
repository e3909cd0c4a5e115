// Copyright 2026 The airgap Authors. All rights reserved.
// Use of this source code is governed under the MIT License
// that can be found in the LICENSE file.

package symbol

import (
	"image"
	"image/color"

	"github.com/locka99/airgap/capacity"

	"github.com/pkg/errors"
	"rsc.io/qr/coding"
)

// Encoder turns a block's wire bytes into a scannable image.
//
// Encode must not retain data after it returns. Implementations must be safe
// for concurrent use.
type Encoder interface {
	Encode(data []byte, c capacity.SizeClass, s capacity.Strength) (image.Image, error)
}

const (
	// DefaultScale is the default number of pixels per QR module.
	DefaultScale = 4
	// MaxScale is the largest supported number of pixels per QR module. A
	// version 30 symbol at MaxScale is 4640 pixels square.
	MaxScale = 32

	// quietZone is the width of the blank margin around a QR code, in modules.
	quietZone = 4
)

var qrPalette = color.Palette{color.White, color.Black}

// QR is an Encoder that produces QR codes.
//
// Data is always encoded in byte mode at exactly the requested version, so a
// symbol holds precisely capacity.Capacity bytes.
type QR struct {
	// Scale is the number of pixels per module. If <= 0, DefaultScale is
	// used. It may not exceed MaxScale.
	Scale int
}

var _ Encoder = (*QR)(nil)

func qrLevel(s capacity.Strength) (coding.Level, error) {
	switch s {
	case capacity.L:
		return coding.L, nil
	case capacity.M:
		return coding.M, nil
	case capacity.Q:
		return coding.Q, nil
	case capacity.H:
		return coding.H, nil
	default:
		return 0, errors.Errorf("no QR level for strength %s", s)
	}
}

// Encode implements Encoder.
func (q *QR) Encode(data []byte, c capacity.SizeClass, s capacity.Strength) (image.Image, error) {
	if q.Scale > MaxScale {
		return nil, errors.Errorf("scale %d exceeds the maximum of %d", q.Scale, MaxScale)
	}
	version := coding.Version(c)
	if version < coding.MinVersion || version > coding.MaxVersion {
		return nil, errors.Errorf("size class %s is not a QR version", c)
	}
	level, err := qrLevel(s)
	if err != nil {
		return nil, err
	}

	plan, err := coding.NewPlan(version, level, 0)
	if err != nil {
		return nil, errors.Wrap(err, "planning QR code")
	}
	code, err := plan.Encode(coding.String(data))
	if err != nil {
		return nil, errors.Wrapf(err, "encoding %d bytes as a %s-%s QR code", len(data), c, s)
	}
	return q.render(code), nil
}

// render draws code with a quiet zone as a two-color image.
func (q *QR) render(code *coding.Code) image.Image {
	scale := q.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	side := (code.Size + 2*quietZone) * scale
	img := image.NewPaletted(image.Rect(0, 0, side, side), qrPalette)
	for y := 0; y < code.Size; y++ {
		for x := 0; x < code.Size; x++ {
			if !code.Black(x, y) {
				continue
			}

			px, py := (x+quietZone)*scale, (y+quietZone)*scale
			for dy := 0; dy < scale; dy++ {
				row := img.Pix[(py+dy)*img.Stride:]
				for dx := 0; dx < scale; dx++ {
					row[px+dx] = 1
				}
			}
		}
	}
	return img
}
