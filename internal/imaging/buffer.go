package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

var (
	// ErrInvalidDimensions is returned when a buffer would have a zero or
	// negative width or height.
	ErrInvalidDimensions = errors.New("image dimensions must be positive")

	// ErrPixelLength is returned when a pixel slice does not hold exactly
	// width*height*4 samples.
	ErrPixelLength = errors.New("pixel data length does not match dimensions")
)

// Buffer is one RGBA8 raster snapshot.
//
// The pixel layout matches the rendering surface: four non-premultiplied
// 8-bit samples per pixel in R, G, B, A order, rows top to bottom.
type Buffer struct {
	img *image.NRGBA
}

// NewBuffer allocates a transparent black buffer of the given size.
func NewBuffer(width, height int) (*Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	return &Buffer{img: image.NewNRGBA(image.Rect(0, 0, width, height))}, nil
}

// FromPixels wraps a copy of pix as a buffer.
func FromPixels(width, height int, pix []byte) (*Buffer, error) {
	b, err := NewBuffer(width, height)
	if err != nil {
		return nil, err
	}
	if len(pix) != width*height*4 {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrPixelLength, len(pix), width*height*4)
	}
	copy(b.img.Pix, pix)
	return b, nil
}

// FromImage converts any decoded image into a buffer. The source is never
// retained, so later changes to img do not leak into the buffer.
func FromImage(img image.Image) (*Buffer, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidDimensions)
	}
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, bounds.Dx(), bounds.Dy())
	}
	return wrap(imaging.Clone(img)), nil
}

// wrap adopts an NRGBA produced by the imaging library. The library always
// returns images anchored at the origin with a tight stride.
func wrap(img *image.NRGBA) *Buffer {
	return &Buffer{img: img}
}

// Width returns the width in pixels.
func (b *Buffer) Width() int { return b.img.Rect.Dx() }

// Height returns the height in pixels.
func (b *Buffer) Height() int { return b.img.Rect.Dy() }

// Bounds returns the buffer rectangle, always anchored at (0,0).
func (b *Buffer) Bounds() image.Rectangle { return b.img.Rect }

// Pix exposes the raw samples. Callers other than in-place filters must
// treat the slice as read-only.
func (b *Buffer) Pix() []byte { return b.img.Pix }

// NRGBA exposes the backing image for drawing and encoding.
func (b *Buffer) NRGBA() *image.NRGBA { return b.img }

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	dst := image.NewNRGBA(b.img.Rect)
	copy(dst.Pix, b.img.Pix)
	return &Buffer{img: dst}
}

// Equal reports whether both buffers have the same dimensions and identical
// samples.
func (b *Buffer) Equal(other *Buffer) bool {
	if b == nil || other == nil {
		return b == other
	}
	if b.img.Rect != other.img.Rect {
		return false
	}
	return bytes.Equal(b.img.Pix, other.img.Pix)
}

// String describes the buffer for logs.
func (b *Buffer) String() string {
	return fmt.Sprintf("Buffer(%dx%d)", b.Width(), b.Height())
}
